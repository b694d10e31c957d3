package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/clinic-server/internal/platform/lock"
)

// Rules are the clinic-hour policies the allocator enforces. Times are
// minutes from midnight. The reschedule window is wider than the booking
// window; the clinic accepts moved appointments into the evening.
type Rules struct {
	SlotMinutes        int
	OpenMin            int
	CloseMin           int
	RescheduleCloseMin int
}

// DefaultRules matches the clinic's standing hours: book 08:00-17:00,
// reschedule until 22:00, 30-minute slots.
func DefaultRules() Rules {
	return Rules{
		SlotMinutes:        30,
		OpenMin:            8 * 60,
		CloseMin:           17 * 60,
		RescheduleCloseMin: 22 * 60,
	}
}

// TxRunner wraps a mutation in a transaction. Production wires db.WithTx;
// tests pass PassthroughTx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service is the booking allocator. Every mutation takes the doctor's keyed
// lock and runs inside a transaction, so two requests racing for the same
// slot are decided in order; the partial unique index in the store is the
// backstop across processes.
type Service struct {
	repo     Repository
	checker  *Checker
	shifts   ShiftSource
	steps    StepSource
	notifier Notifier
	locks    *lock.Keyed
	runTx    TxRunner
	rules    Rules
	now      func() time.Time
}

func NewService(repo Repository, shifts ShiftSource, steps StepSource, notifier Notifier, locks *lock.Keyed, runTx TxRunner, rules Rules) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		repo:     repo,
		checker:  NewChecker(repo, shifts),
		shifts:   shifts,
		steps:    steps,
		notifier: notifier,
		locks:    locks,
		runTx:    runTx,
		rules:    rules,
		now:      time.Now,
	}
}

// CreateRequest is the input to CreateBooking.
type CreateRequest struct {
	DoctorID    uuid.UUID
	PatientID   uuid.UUID
	Date        time.Time
	StartMin    int
	DurationMin int
	Note        *string
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) validateSpan(date time.Time, startMin, durationMin, closeMin int) error {
	if durationMin <= 0 {
		return validationf("duration must be positive, got %d", durationMin)
	}
	if !dateOnly(date).After(dateOnly(s.now())) {
		return validationf("date must be in the future")
	}
	if startMin < s.rules.OpenMin {
		return validationf("start %s is before clinic opening %s", MinuteOfDay(startMin), MinuteOfDay(s.rules.OpenMin))
	}
	if startMin+durationMin > closeMin {
		return validationf("end %s is after clinic closing %s", MinuteOfDay(startMin+durationMin), MinuteOfDay(closeMin))
	}
	return nil
}

// CreateBooking reserves [StartMin, StartMin+DurationMin) for the doctor and
// inserts it in waiting status. The returned token is what the deposit
// callback presents to ConfirmDeposit.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*Booking, string, error) {
	if req.DoctorID == uuid.Nil {
		return nil, "", validationf("doctor_id is required")
	}
	if req.PatientID == uuid.Nil {
		return nil, "", validationf("patient_id is required")
	}
	if err := s.validateSpan(req.Date, req.StartMin, req.DurationMin, s.rules.CloseMin); err != nil {
		return nil, "", err
	}

	date := dateOnly(req.Date)
	token := uuid.NewString()
	b := &Booking{
		DoctorID:     req.DoctorID,
		PatientID:    &req.PatientID,
		Date:         date,
		StartMin:     req.StartMin,
		EndMin:       req.StartMin + req.DurationMin,
		Status:       StatusWaiting,
		Type:         TypeBooked,
		Note:         req.Note,
		DepositToken: &token,
	}

	err := s.locks.Do(req.DoctorID, func() error {
		return s.runTx(ctx, func(ctx context.Context) error {
			if err := s.checker.check(ctx, req.DoctorID, date, b.StartMin, b.EndMin, nil); err != nil {
				return err
			}
			return s.repo.Insert(ctx, b)
		})
	})
	if err != nil {
		return nil, "", err
	}

	s.notifier.BookingStatusChanged(b, "")
	return b, token, nil
}

// ConfirmDeposit moves a waiting booking to booked once its deposit token is
// presented.
func (s *Service) ConfirmDeposit(ctx context.Context, id uuid.UUID, token string) (*Booking, error) {
	return s.transition(ctx, id, StatusBooked, func(b *Booking) error {
		if b.Status != StatusWaiting {
			return conflictf("booking %s is not awaiting deposit (status %s)", id, b.Status)
		}
		if b.DepositToken == nil || *b.DepositToken != token {
			return conflictf("deposit token does not match")
		}
		return nil
	})
}

// ConfirmBooking moves a booked booking to confirmed.
func (s *Service) ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusConfirmed, nil)
}

// CancelBooking moves a non-terminal booking to cancelled, or to failed when
// asFailed is set (staff marking a no-show or lapsed deposit). Terminal
// bookings reject.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, asFailed bool) (*Booking, error) {
	target := StatusCancelled
	if asFailed {
		target = StatusFailed
	}
	return s.transition(ctx, id, target, nil)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, target Status, guard func(*Booking) error) (*Booking, error) {
	var out *Booking
	var prev Status

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &NotFoundError{Resource: "booking", ID: id.String()}
	}

	err = s.locks.Do(b.DoctorID, func() error {
		return s.runTx(ctx, func(ctx context.Context) error {
			b, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if b == nil {
				return &NotFoundError{Resource: "booking", ID: id.String()}
			}
			if guard != nil {
				if err := guard(b); err != nil {
					return err
				}
			}
			if !b.Status.CanTransitionTo(target) {
				return conflictf("booking %s cannot move from %s to %s", id, b.Status, target)
			}
			prev = b.Status
			b.Status = target
			if err := s.repo.Update(ctx, b); err != nil {
				return err
			}
			out = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingStatusChanged(out, prev)
	return out, nil
}

// RescheduleBooking rewrites a booked booking's span in place. The identity
// and status are preserved; the widened evening window applies.
func (s *Service) RescheduleBooking(ctx context.Context, id uuid.UUID, newDate time.Time, newStartMin, newDurationMin int) (*Booking, error) {
	if err := s.validateSpan(newDate, newStartMin, newDurationMin, s.rules.RescheduleCloseMin); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Resource: "booking", ID: id.String()}
	}

	date := dateOnly(newDate)
	var out *Booking
	err = s.locks.Do(existing.DoctorID, func() error {
		return s.runTx(ctx, func(ctx context.Context) error {
			b, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if b == nil {
				return &NotFoundError{Resource: "booking", ID: id.String()}
			}
			if b.Status != StatusBooked {
				return conflictf("booking %s cannot be rescheduled (status %s)", id, b.Status)
			}

			if err := s.checker.check(ctx, b.DoctorID, date, newStartMin, newStartMin+newDurationMin, &b.ID); err != nil {
				return err
			}

			b.Date = date
			b.StartMin = newStartMin
			b.EndMin = newStartMin + newDurationMin
			if err := s.repo.Update(ctx, b); err != nil {
				return err
			}
			out = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingStatusChanged(out, out.Status)
	return out, nil
}

// AddFollowUp schedules a treatment step. The first step rewrites its
// already-linked booking in place; later steps insert a fresh follow-up
// booking with the standard slot width.
func (s *Service) AddFollowUp(ctx context.Context, stepID uuid.UUID, date time.Time, startMin int) (*Booking, error) {
	step, err := s.steps.Step(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, &NotFoundError{Resource: "treatment step", ID: stepID.String()}
	}
	if err := s.validateSpan(date, startMin, s.rules.SlotMinutes, s.rules.CloseMin); err != nil {
		return nil, err
	}

	day := dateOnly(date)
	endMin := startMin + s.rules.SlotMinutes

	if step.Seq == 1 && step.BookingID != nil {
		var out *Booking
		err := s.locks.Do(step.DoctorID, func() error {
			return s.runTx(ctx, func(ctx context.Context) error {
				b, err := s.repo.GetByID(ctx, *step.BookingID)
				if err != nil {
					return err
				}
				if b == nil {
					return &NotFoundError{Resource: "booking", ID: step.BookingID.String()}
				}
				if err := s.checker.check(ctx, b.DoctorID, day, startMin, endMin, &b.ID); err != nil {
					return err
				}
				b.Date = day
				b.StartMin = startMin
				b.EndMin = endMin
				b.TreatmentStepID = &step.ID
				if err := s.repo.Update(ctx, b); err != nil {
					return err
				}
				out = b
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
		s.notifier.BookingStatusChanged(out, out.Status)
		return out, nil
	}

	b := &Booking{
		DoctorID:        step.DoctorID,
		PatientID:       &step.PatientID,
		TreatmentStepID: &step.ID,
		Date:            day,
		StartMin:        startMin,
		EndMin:          endMin,
		Status:          StatusBooked,
		Type:            TypeFollowUp,
	}
	err = s.locks.Do(step.DoctorID, func() error {
		return s.runTx(ctx, func(ctx context.Context) error {
			if err := s.checker.check(ctx, step.DoctorID, day, startMin, endMin, nil); err != nil {
				return err
			}
			if err := s.repo.Insert(ctx, b); err != nil {
				return err
			}
			return s.steps.LinkBooking(ctx, step.ID, b.ID)
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingStatusChanged(b, "")
	return b, nil
}

// ListAvailableSlots returns the free slot starts for the doctor and date,
// in minutes from midnight. Empty when the doctor has no accepted working
// day.
func (s *Service) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]int, error) {
	day := dateOnly(date)
	windows, err := s.shifts.WorkingWindows(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, nil
	}

	occupied, err := s.repo.ListByDoctorDate(ctx, doctorID, day, occupyingStatuses)
	if err != nil {
		return nil, err
	}

	var out []int
	for t := range availableSlots(windows, s.rules.SlotMinutes, occupied) {
		out = append(out, t)
	}
	return out, nil
}

// IsAvailable reports whether the span is bookable for the doctor.
func (s *Service) IsAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, startMin, endMin int) (bool, error) {
	return s.checker.IsAvailable(ctx, doctorID, dateOnly(date), startMin, endMin)
}

// GetBooking returns the booking or nil.
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// ListBookings pages through all bookings.
func (s *Service) ListBookings(ctx context.Context, limit, offset int) ([]*Booking, int, error) {
	return s.repo.List(ctx, limit, offset)
}
