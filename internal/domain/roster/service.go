package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IntervalInput is one requested on-duty span when registering a shift.
type IntervalInput struct {
	StartMin int `json:"start_min"`
	EndMin   int `json:"end_min"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterShift creates a working day in waiting status together with its
// requested intervals. Staff later approve or reject the day.
func (s *Service) RegisterShift(ctx context.Context, doctorID uuid.UUID, date time.Time, intervals []IntervalInput) (*WorkingDay, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if len(intervals) == 0 {
		return nil, fmt.Errorf("at least one interval is required")
	}
	for _, iv := range intervals {
		if iv.StartMin < 0 || iv.EndMin > 24*60 || iv.StartMin >= iv.EndMin {
			return nil, fmt.Errorf("invalid interval %d-%d", iv.StartMin, iv.EndMin)
		}
	}

	existing, err := s.repo.GetDay(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("working day already registered for %s", date.Format("2006-01-02"))
	}

	day := &WorkingDay{DoctorID: doctorID, Date: date, Status: DayWaiting}
	if err := s.repo.CreateDay(ctx, day); err != nil {
		return nil, err
	}
	for _, in := range intervals {
		iv := &WorkingInterval{
			WorkingDayID: day.ID,
			DoctorID:     doctorID,
			Date:         date,
			StartMin:     in.StartMin,
			EndMin:       in.EndMin,
			Active:       true,
		}
		if err := s.repo.CreateInterval(ctx, iv); err != nil {
			return nil, err
		}
	}
	return day, nil
}

// ApproveDay flips a waiting day to accept, making its intervals bookable.
func (s *Service) ApproveDay(ctx context.Context, dayID uuid.UUID) error {
	return s.decideDay(ctx, dayID, DayAccept)
}

// RejectDay flips a waiting day to off.
func (s *Service) RejectDay(ctx context.Context, dayID uuid.UUID) error {
	return s.decideDay(ctx, dayID, DayOff)
}

func (s *Service) decideDay(ctx context.Context, dayID uuid.UUID, status DayStatus) error {
	day, err := s.repo.GetDayByID(ctx, dayID)
	if err != nil {
		return err
	}
	if day == nil {
		return fmt.Errorf("working day %s not found", dayID)
	}
	if day.Status != DayWaiting {
		return fmt.Errorf("working day %s is not awaiting decision (status %s)", dayID, day.Status)
	}
	return s.repo.UpdateDayStatus(ctx, dayID, status)
}

// ApproveLeave deactivates the exact sub-interval staff granted leave for.
// When no interval remains active the day flips to off.
func (s *Service) ApproveLeave(ctx context.Context, intervalID uuid.UUID) error {
	iv, err := s.repo.GetInterval(ctx, intervalID)
	if err != nil {
		return err
	}
	if iv == nil {
		return fmt.Errorf("working interval %s not found", intervalID)
	}
	if !iv.Active {
		return fmt.Errorf("working interval %s is already inactive", intervalID)
	}

	if err := s.repo.SetIntervalActive(ctx, intervalID, false); err != nil {
		return err
	}

	siblings, err := s.repo.IntervalsForDay(ctx, iv.WorkingDayID)
	if err != nil {
		return err
	}
	for _, sib := range siblings {
		if sib.ID != intervalID && sib.Active {
			return nil
		}
	}
	return s.repo.UpdateDayStatus(ctx, iv.WorkingDayID, DayOff)
}

// GetWorkingDay returns the day and its intervals; (nil, nil, nil) when no
// day is registered for that doctor and date.
func (s *Service) GetWorkingDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (*WorkingDay, []*WorkingInterval, error) {
	day, err := s.repo.GetDay(ctx, doctorID, date)
	if err != nil {
		return nil, nil, err
	}
	if day == nil {
		return nil, nil, nil
	}
	intervals, err := s.repo.IntervalsForDay(ctx, day.ID)
	if err != nil {
		return nil, nil, err
	}
	return day, intervals, nil
}

// ActiveIntervals returns the bookable intervals for a doctor and date:
// active intervals of an accepted day, ordered by start. Empty when the day
// is missing, waiting, or off.
func (s *Service) ActiveIntervals(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*WorkingInterval, error) {
	day, intervals, err := s.GetWorkingDay(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if day == nil || day.Status != DayAccept {
		return nil, nil
	}

	var active []*WorkingInterval
	for _, iv := range intervals {
		if iv.Active {
			active = append(active, iv)
		}
	}
	return active, nil
}

func (s *Service) ListDays(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*WorkingDay, error) {
	return s.repo.ListDays(ctx, doctorID, from, to)
}
