package treatment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreatePlan(ctx context.Context, p *TreatmentPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	UpdatePlanStatus(ctx context.Context, id uuid.UUID, status PlanStatus) error
	ListPlansByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error)

	CreateStep(ctx context.Context, st *TreatmentStep) error
	GetStep(ctx context.Context, id uuid.UUID) (*TreatmentStep, error)
	UpdateStep(ctx context.Context, st *TreatmentStep) error
	StepsForPlan(ctx context.Context, planID uuid.UUID) ([]*TreatmentStep, error)
}
