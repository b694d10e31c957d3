package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentora/clinic-server/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const planCols = `id, patient_id, doctor_id, title, status, created_at, updated_at`

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.Title, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) CreatePlan(ctx context.Context, p *TreatmentPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plan (id, patient_id, doctor_id, title, status)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.PatientID, p.DoctorID, p.Title, p.Status)
	return err
}

func (r *repoPG) GetPlan(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, err := scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status PlanStatus) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE treatment_plan SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) ListPlansByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM treatment_plan WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*TreatmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

const stepCols = `id, plan_id, seq, description, booking_id, status, created_at, updated_at`

func scanStep(row pgx.Row) (*TreatmentStep, error) {
	var st TreatmentStep
	err := row.Scan(&st.ID, &st.PlanID, &st.Seq, &st.Description, &st.BookingID, &st.Status, &st.CreatedAt, &st.UpdatedAt)
	return &st, err
}

func (r *repoPG) CreateStep(ctx context.Context, st *TreatmentStep) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_step (id, plan_id, seq, description, booking_id, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		st.ID, st.PlanID, st.Seq, st.Description, st.BookingID, st.Status)
	return err
}

func (r *repoPG) GetStep(ctx context.Context, id uuid.UUID) (*TreatmentStep, error) {
	st, err := scanStep(r.conn(ctx).QueryRow(ctx, `SELECT `+stepCols+` FROM treatment_step WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *repoPG) UpdateStep(ctx context.Context, st *TreatmentStep) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_step SET description=$2, booking_id=$3, status=$4, updated_at=NOW()
		WHERE id = $1`,
		st.ID, st.Description, st.BookingID, st.Status)
	return err
}

func (r *repoPG) StepsForPlan(ctx context.Context, planID uuid.UUID) ([]*TreatmentStep, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stepCols+` FROM treatment_step WHERE plan_id = $1 ORDER BY seq`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*TreatmentStep
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}
