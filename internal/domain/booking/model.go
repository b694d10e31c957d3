package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the booking state machine. A booking starts waiting (pending
// deposit), becomes booked once the deposit is confirmed, and ends in one of
// the terminal states.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var allowedTransitions = map[Status][]Status{
	StatusWaiting: {StatusBooked, StatusFailed, StatusCancelled},
	StatusBooked:  {StatusConfirmed, StatusCancelled, StatusFailed},
}

// CanTransitionTo reports whether the state machine permits moving from s
// to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Type distinguishes a primary appointment from a treatment follow-up visit.
type Type string

const (
	TypeBooked   Type = "booked"
	TypeFollowUp Type = "followup"
)

// Booking maps to the booking table: one reserved span of a doctor's time on
// a date. Times of day are minutes from midnight, half-open
// [StartMin, EndMin). Rows are never deleted; failed and cancelled bookings
// stay for audit.
type Booking struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID       *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	AppointmentID   *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	TreatmentStepID *uuid.UUID `db:"treatment_step_id" json:"treatment_step_id,omitempty"`
	Date            time.Time  `db:"visit_date" json:"date"`
	StartMin        int        `db:"start_min" json:"start_min"`
	EndMin          int        `db:"end_min" json:"end_min"`
	Status          Status     `db:"status" json:"status"`
	Type            Type       `db:"btype" json:"type"`
	Note            *string    `db:"note" json:"note,omitempty"`
	DepositToken    *string    `db:"deposit_token" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// MinuteOfDay formats a minutes-from-midnight value as HH:MM.
func MinuteOfDay(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
