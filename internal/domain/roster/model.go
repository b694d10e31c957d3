package roster

import (
	"time"

	"github.com/google/uuid"
)

// DayStatus is the staff decision on a doctor's registered working day.
type DayStatus string

const (
	DayAccept  DayStatus = "accept"
	DayOff     DayStatus = "off"
	DayWaiting DayStatus = "waiting"
)

var validDayStatuses = map[DayStatus]bool{
	DayAccept: true, DayOff: true, DayWaiting: true,
}

// WorkingDay maps to the working_day table. One row per doctor per calendar
// date; bookable only while status is accept.
type WorkingDay struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"work_date" json:"date"`
	Status    DayStatus `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WorkingInterval maps to the working_interval table. Times of day are
// minutes from midnight, half-open [StartMin, EndMin).
type WorkingInterval struct {
	ID           uuid.UUID `db:"id" json:"id"`
	WorkingDayID uuid.UUID `db:"working_day_id" json:"working_day_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date         time.Time `db:"work_date" json:"date"`
	StartMin     int       `db:"start_min" json:"start_min"`
	EndMin       int       `db:"end_min" json:"end_min"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
