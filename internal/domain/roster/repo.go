package roster

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateDay(ctx context.Context, day *WorkingDay) error
	// GetDay returns (nil, nil) when no working day exists for the doctor and
	// date. Callers treat that as "doctor unavailable", not an error.
	GetDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (*WorkingDay, error)
	GetDayByID(ctx context.Context, id uuid.UUID) (*WorkingDay, error)
	UpdateDayStatus(ctx context.Context, id uuid.UUID, status DayStatus) error
	ListDays(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*WorkingDay, error)

	CreateInterval(ctx context.Context, iv *WorkingInterval) error
	GetInterval(ctx context.Context, id uuid.UUID) (*WorkingInterval, error)
	IntervalsForDay(ctx context.Context, workingDayID uuid.UUID) ([]*WorkingInterval, error)
	SetIntervalActive(ctx context.Context, id uuid.UUID, active bool) error
}
