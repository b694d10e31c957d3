package treatment

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus tracks a treatment plan's overall progress.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
)

var validPlanStatuses = map[PlanStatus]bool{
	PlanActive: true, PlanCompleted: true, PlanCancelled: true,
}

// StepStatus tracks one step of a plan.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepScheduled StepStatus = "scheduled"
	StepDone      StepStatus = "done"
)

// TreatmentPlan maps to the treatment_plan table.
type TreatmentPlan struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Title     string     `db:"title" json:"title"`
	Status    PlanStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// TreatmentStep maps to the treatment_step table. Seq is 1-based within the
// plan. BookingID links the step to its scheduled visit once one exists.
type TreatmentStep struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PlanID      uuid.UUID  `db:"plan_id" json:"plan_id"`
	Seq         int        `db:"seq" json:"seq"`
	Description string     `db:"description" json:"description"`
	BookingID   *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	Status      StepStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
