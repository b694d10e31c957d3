package roster

import (
	"context"
	"errors"
	"time"

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

const dayCols = `id, doctor_id, work_date, status, created_at, updated_at`

func scanDay(row pgx.Row) (*WorkingDay, error) {
	var d WorkingDay
	err := row.Scan(&d.ID, &d.DoctorID, &d.Date, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) CreateDay(ctx context.Context, day *WorkingDay) error {
	if day.ID == uuid.Nil {
		day.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO working_day (id, doctor_id, work_date, status)
		VALUES ($1,$2,$3,$4)`,
		day.ID, day.DoctorID, day.Date, day.Status)
	return err
}

func (r *repoPG) GetDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (*WorkingDay, error) {
	d, err := scanDay(r.conn(ctx).QueryRow(ctx,
		`SELECT `+dayCols+` FROM working_day WHERE doctor_id = $1 AND work_date = $2`,
		doctorID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repoPG) GetDayByID(ctx context.Context, id uuid.UUID) (*WorkingDay, error) {
	d, err := scanDay(r.conn(ctx).QueryRow(ctx,
		`SELECT `+dayCols+` FROM working_day WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repoPG) UpdateDayStatus(ctx context.Context, id uuid.UUID, status DayStatus) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE working_day SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) ListDays(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*WorkingDay, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+dayCols+` FROM working_day
		 WHERE doctor_id = $1 AND work_date BETWEEN $2 AND $3
		 ORDER BY work_date`,
		doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*WorkingDay
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const intervalCols = `id, working_day_id, doctor_id, work_date, start_min, end_min, active, created_at, updated_at`

func scanInterval(row pgx.Row) (*WorkingInterval, error) {
	var iv WorkingInterval
	err := row.Scan(&iv.ID, &iv.WorkingDayID, &iv.DoctorID, &iv.Date,
		&iv.StartMin, &iv.EndMin, &iv.Active, &iv.CreatedAt, &iv.UpdatedAt)
	return &iv, err
}

func (r *repoPG) CreateInterval(ctx context.Context, iv *WorkingInterval) error {
	if iv.ID == uuid.Nil {
		iv.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO working_interval (id, working_day_id, doctor_id, work_date, start_min, end_min, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		iv.ID, iv.WorkingDayID, iv.DoctorID, iv.Date, iv.StartMin, iv.EndMin, iv.Active)
	return err
}

func (r *repoPG) GetInterval(ctx context.Context, id uuid.UUID) (*WorkingInterval, error) {
	iv, err := scanInterval(r.conn(ctx).QueryRow(ctx,
		`SELECT `+intervalCols+` FROM working_interval WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func (r *repoPG) IntervalsForDay(ctx context.Context, workingDayID uuid.UUID) ([]*WorkingInterval, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+intervalCols+` FROM working_interval WHERE working_day_id = $1 ORDER BY start_min`,
		workingDayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*WorkingInterval
	for rows.Next() {
		iv, err := scanInterval(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, iv)
	}
	return items, rows.Err()
}

func (r *repoPG) SetIntervalActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE working_interval SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	return err
}
