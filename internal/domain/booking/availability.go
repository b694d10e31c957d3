package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// occupyingStatuses are the booking states that hold a slot.
var occupyingStatuses = []Status{StatusWaiting, StatusBooked}

// Checker decides whether a doctor can be booked for a span. It reads the
// working calendar and the booking store and never mutates either.
type Checker struct {
	repo   Repository
	shifts ShiftSource
}

func NewChecker(repo Repository, shifts ShiftSource) *Checker {
	return &Checker{repo: repo, shifts: shifts}
}

// IsAvailable reports whether [startMin, endMin) on date is bookable for the
// doctor: fully contained in a single working window and free of waiting or
// booked bookings.
func (c *Checker) IsAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, startMin, endMin int) (bool, error) {
	err := c.check(ctx, doctorID, date, startMin, endMin, nil)
	if err == nil {
		return true, nil
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return false, nil
	}
	return false, err
}

// IsAvailableExcluding is IsAvailable with one booking left out of the
// overlap query, so a reschedule does not conflict with the booking's own
// current span.
func (c *Checker) IsAvailableExcluding(ctx context.Context, doctorID uuid.UUID, date time.Time, startMin, endMin int, selfID uuid.UUID) (bool, error) {
	err := c.check(ctx, doctorID, date, startMin, endMin, &selfID)
	if err == nil {
		return true, nil
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return false, nil
	}
	return false, err
}

// check returns nil when the span is bookable, a *ConflictError naming the
// failed rule otherwise.
func (c *Checker) check(ctx context.Context, doctorID uuid.UUID, date time.Time, startMin, endMin int, excludeID *uuid.UUID) error {
	windows, err := c.shifts.WorkingWindows(ctx, doctorID, date)
	if err != nil {
		return err
	}
	if len(windows) == 0 {
		return &ConflictError{Reason: ReasonNoWorkingDay}
	}

	// The span must fit inside a single window; spans are never assembled
	// across two adjacent windows.
	contained := false
	for _, w := range windows {
		if w.StartMin <= startMin && endMin <= w.EndMin {
			contained = true
			break
		}
	}
	if !contained {
		return &ConflictError{Reason: ReasonOutsideShift}
	}

	overlapping, err := c.repo.FindOverlapping(ctx, doctorID, date, startMin, endMin, occupyingStatuses, excludeID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return &ConflictError{Reason: ReasonSlotTaken}
	}
	return nil
}
