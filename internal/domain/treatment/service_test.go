package treatment

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	plans map[uuid.UUID]*TreatmentPlan
	steps map[uuid.UUID]*TreatmentStep
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		plans: make(map[uuid.UUID]*TreatmentPlan),
		steps: make(map[uuid.UUID]*TreatmentStep),
	}
}

func (m *mockRepo) CreatePlan(_ context.Context, p *TreatmentPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.plans[p.ID] = p
	return nil
}

func (m *mockRepo) GetPlan(_ context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return m.plans[id], nil
}

func (m *mockRepo) UpdatePlanStatus(_ context.Context, id uuid.UUID, status PlanStatus) error {
	m.plans[id].Status = status
	return nil
}

func (m *mockRepo) ListPlansByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	var out []*TreatmentPlan
	for _, p := range m.plans {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateStep(_ context.Context, st *TreatmentStep) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	m.steps[st.ID] = st
	return nil
}

func (m *mockRepo) GetStep(_ context.Context, id uuid.UUID) (*TreatmentStep, error) {
	return m.steps[id], nil
}

func (m *mockRepo) UpdateStep(_ context.Context, st *TreatmentStep) error {
	m.steps[st.ID] = st
	return nil
}

func (m *mockRepo) StepsForPlan(_ context.Context, planID uuid.UUID) ([]*TreatmentStep, error) {
	var out []*TreatmentStep
	for _, st := range m.steps {
		if st.PlanID == planID {
			out = append(out, st)
		}
	}
	return out, nil
}

func newActivePlan(t *testing.T, svc *Service) *TreatmentPlan {
	t.Helper()
	p := &TreatmentPlan{PatientID: uuid.New(), DoctorID: uuid.New(), Title: "root canal"}
	if err := svc.CreatePlan(context.Background(), p); err != nil {
		t.Fatalf("CreatePlan() error: %v", err)
	}
	return p
}

func TestCreatePlan(t *testing.T) {
	svc := NewService(newMockRepo())

	p := newActivePlan(t, svc)
	if p.Status != PlanActive {
		t.Errorf("expected default active status, got %s", p.Status)
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		plan *TreatmentPlan
	}{
		{"missing patient", &TreatmentPlan{DoctorID: uuid.New(), Title: "x"}},
		{"missing doctor", &TreatmentPlan{PatientID: uuid.New(), Title: "x"}},
		{"missing title", &TreatmentPlan{PatientID: uuid.New(), DoctorID: uuid.New()}},
		{"bad status", &TreatmentPlan{PatientID: uuid.New(), DoctorID: uuid.New(), Title: "x", Status: "paused"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.CreatePlan(ctx, tc.plan); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAddStep_SequencesSteps(t *testing.T) {
	svc := NewService(newMockRepo())
	p := newActivePlan(t, svc)

	st1, err := svc.AddStep(context.Background(), p.ID, "extraction")
	if err != nil {
		t.Fatalf("AddStep() error: %v", err)
	}
	st2, err := svc.AddStep(context.Background(), p.ID, "implant")
	if err != nil {
		t.Fatalf("AddStep() error: %v", err)
	}

	if st1.Seq != 1 || st2.Seq != 2 {
		t.Errorf("expected seq 1 and 2, got %d and %d", st1.Seq, st2.Seq)
	}
	if st1.Status != StepPending {
		t.Errorf("expected pending status, got %s", st1.Status)
	}
}

func TestAddStep_InactivePlan(t *testing.T) {
	svc := NewService(newMockRepo())
	p := newActivePlan(t, svc)

	if err := svc.CompletePlan(context.Background(), p.ID); err != nil {
		t.Fatalf("CompletePlan() error: %v", err)
	}
	if _, err := svc.AddStep(context.Background(), p.ID, "extra"); err == nil {
		t.Error("expected error adding step to completed plan")
	}
}

func TestPlanTransitions(t *testing.T) {
	svc := NewService(newMockRepo())
	p := newActivePlan(t, svc)

	if err := svc.CancelPlan(context.Background(), p.ID); err != nil {
		t.Fatalf("CancelPlan() error: %v", err)
	}
	if err := svc.CompletePlan(context.Background(), p.ID); err == nil {
		t.Error("expected error completing a cancelled plan")
	}
	if err := svc.CancelPlan(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for unknown plan")
	}
}

func TestMarkStepScheduledAndDone(t *testing.T) {
	svc := NewService(newMockRepo())
	p := newActivePlan(t, svc)

	st, _ := svc.AddStep(context.Background(), p.ID, "extraction")
	bookingID := uuid.New()

	if err := svc.MarkStepDone(context.Background(), st.ID); err == nil {
		t.Error("expected error marking a pending step done")
	}

	if err := svc.MarkStepScheduled(context.Background(), st.ID, bookingID); err != nil {
		t.Fatalf("MarkStepScheduled() error: %v", err)
	}
	got, _ := svc.GetStep(context.Background(), st.ID)
	if got.Status != StepScheduled {
		t.Errorf("expected scheduled status, got %s", got.Status)
	}
	if got.BookingID == nil || *got.BookingID != bookingID {
		t.Error("expected booking link on scheduled step")
	}

	if err := svc.MarkStepDone(context.Background(), st.ID); err != nil {
		t.Fatalf("MarkStepDone() error: %v", err)
	}
	got, _ = svc.GetStep(context.Background(), st.ID)
	if got.Status != StepDone {
		t.Errorf("expected done status, got %s", got.Status)
	}
}
