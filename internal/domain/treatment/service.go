package treatment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePlan(ctx context.Context, p *TreatmentPlan) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if p.Status == "" {
		p.Status = PlanActive
	}
	if !validPlanStatuses[p.Status] {
		return fmt.Errorf("invalid plan status: %s", p.Status)
	}
	return s.repo.CreatePlan(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return s.repo.GetPlan(ctx, id)
}

func (s *Service) ListPlansByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	return s.repo.ListPlansByPatient(ctx, patientID, limit, offset)
}

func (s *Service) CompletePlan(ctx context.Context, id uuid.UUID) error {
	return s.transitionPlan(ctx, id, PlanCompleted)
}

func (s *Service) CancelPlan(ctx context.Context, id uuid.UUID) error {
	return s.transitionPlan(ctx, id, PlanCancelled)
}

func (s *Service) transitionPlan(ctx context.Context, id uuid.UUID, status PlanStatus) error {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("treatment plan %s not found", id)
	}
	if p.Status != PlanActive {
		return fmt.Errorf("treatment plan %s is not active (status %s)", id, p.Status)
	}
	return s.repo.UpdatePlanStatus(ctx, id, status)
}

// AddStep appends a step at the next sequence position.
func (s *Service) AddStep(ctx context.Context, planID uuid.UUID, description string) (*TreatmentStep, error) {
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	p, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("treatment plan %s not found", planID)
	}
	if p.Status != PlanActive {
		return nil, fmt.Errorf("treatment plan %s is not active", planID)
	}

	steps, err := s.repo.StepsForPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	st := &TreatmentStep{
		PlanID:      planID,
		Seq:         len(steps) + 1,
		Description: description,
		Status:      StepPending,
	}
	if err := s.repo.CreateStep(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) GetStep(ctx context.Context, id uuid.UUID) (*TreatmentStep, error) {
	return s.repo.GetStep(ctx, id)
}

func (s *Service) StepsForPlan(ctx context.Context, planID uuid.UUID) ([]*TreatmentStep, error) {
	return s.repo.StepsForPlan(ctx, planID)
}

// MarkStepScheduled links a step to the booking that covers it.
func (s *Service) MarkStepScheduled(ctx context.Context, stepID, bookingID uuid.UUID) error {
	st, err := s.repo.GetStep(ctx, stepID)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("treatment step %s not found", stepID)
	}
	st.BookingID = &bookingID
	st.Status = StepScheduled
	return s.repo.UpdateStep(ctx, st)
}

func (s *Service) MarkStepDone(ctx context.Context, stepID uuid.UUID) error {
	st, err := s.repo.GetStep(ctx, stepID)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("treatment step %s not found", stepID)
	}
	if st.Status != StepScheduled {
		return fmt.Errorf("treatment step %s is not scheduled (status %s)", stepID, st.Status)
	}
	st.Status = StepDone
	return s.repo.UpdateStep(ctx, st)
}
