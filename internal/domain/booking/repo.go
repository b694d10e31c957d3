package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the booking store. The allocator is the only component that
// mutates bookings.
type Repository interface {
	Insert(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// Update rewrites the row in place, preserving identity.
	Update(ctx context.Context, b *Booking) error
	// FindOverlapping returns bookings for the doctor and date whose interval
	// overlaps [startMin, endMin) under half-open semantics and whose status
	// is in statuses. When excludeID is non-nil that booking is skipped, so a
	// reschedule does not conflict with itself.
	FindOverlapping(ctx context.Context, doctorID uuid.UUID, date time.Time, startMin, endMin int, statuses []Status, excludeID *uuid.UUID) ([]*Booking, error)
	ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []Status) ([]*Booking, error)
	List(ctx context.Context, limit, offset int) ([]*Booking, int, error)
}

// WorkingWindow is one bookable span of a doctor's day, minutes from
// midnight, half-open.
type WorkingWindow struct {
	StartMin int
	EndMin   int
}

// ShiftSource exposes the working calendar to the scheduler. Implemented by
// the roster service; the scheduler never mutates roster rows.
type ShiftSource interface {
	// WorkingWindows returns the active bookable windows for the doctor and
	// date, ordered by start. Empty when the doctor has no accepted working
	// day, which callers treat as "doctor unavailable".
	WorkingWindows(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]WorkingWindow, error)
}

// FollowUpStep is the scheduler's view of one treatment-plan step.
type FollowUpStep struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Seq       int
	BookingID *uuid.UUID
}

// StepSource exposes treatment-plan steps to the scheduler. Implemented by
// the treatment service.
type StepSource interface {
	Step(ctx context.Context, stepID uuid.UUID) (*FollowUpStep, error)
	LinkBooking(ctx context.Context, stepID, bookingID uuid.UUID) error
}

// Notifier receives booking state transitions, fire-and-forget. Delivery is
// not guaranteed and failures never fail the booking operation.
type Notifier interface {
	BookingStatusChanged(b *Booking, previous Status)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) BookingStatusChanged(*Booking, Status) {}
