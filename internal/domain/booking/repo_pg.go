package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentora/clinic-server/internal/platform/db"
)

type repoPG struct {
	pool          *pgxpool.Pool
	retryAttempts int
}

// NewRepoPG creates the Postgres booking store. Transient read failures are
// retried up to retryAttempts times; writes are not retried because they run
// inside the allocator's transaction.
func NewRepoPG(pool *pgxpool.Pool, retryAttempts int) Repository {
	return &repoPG{pool: pool, retryAttempts: retryAttempts}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const cols = `id, doctor_id, patient_id, appointment_id, treatment_step_id,
	visit_date, start_min, end_min, status, btype, note, deposit_token, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.DoctorID, &b.PatientID, &b.AppointmentID, &b.TreatmentStepID,
		&b.Date, &b.StartMin, &b.EndMin, &b.Status, &b.Type, &b.Note, &b.DepositToken,
		&b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *repoPG) Insert(ctx context.Context, b *Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking (id, doctor_id, patient_id, appointment_id, treatment_step_id,
			visit_date, start_min, end_min, status, btype, note, deposit_token)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		b.ID, b.DoctorID, b.PatientID, b.AppointmentID, b.TreatmentStepID,
		b.Date, b.StartMin, b.EndMin, b.Status, b.Type, b.Note, b.DepositToken)

	// The partial unique index on (doctor_id, visit_date, start_min) is the
	// cross-process backstop for two writers racing past the availability
	// check.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &ConflictError{Reason: ReasonSlotTaken}
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b *Booking
	err := db.WithRetry(ctx, r.retryAttempts, func(ctx context.Context) error {
		var err error
		b, err = scanBooking(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM booking WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repoPG) Update(ctx context.Context, b *Booking) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET patient_id=$2, appointment_id=$3, treatment_step_id=$4,
			visit_date=$5, start_min=$6, end_min=$7, status=$8, btype=$9, note=$10, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.PatientID, b.AppointmentID, b.TreatmentStepID,
		b.Date, b.StartMin, b.EndMin, b.Status, b.Type, b.Note)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &ConflictError{Reason: ReasonSlotTaken}
	}
	return err
}

func (r *repoPG) FindOverlapping(ctx context.Context, doctorID uuid.UUID, date time.Time, startMin, endMin int, statuses []Status, excludeID *uuid.UUID) ([]*Booking, error) {
	var items []*Booking
	err := db.WithRetry(ctx, r.retryAttempts, func(ctx context.Context) error {
		rows, err := r.conn(ctx).Query(ctx, `
			SELECT `+cols+` FROM booking
			WHERE doctor_id = $1 AND visit_date = $2
			  AND status = ANY($3)
			  AND start_min < $5 AND $4 < end_min
			  AND ($6::uuid IS NULL OR id <> $6)
			ORDER BY start_min`,
			doctorID, date, statusStrings(statuses), startMin, endMin, excludeID)
		if err != nil {
			return err
		}
		defer rows.Close()

		items = items[:0]
		for rows.Next() {
			b, err := scanBooking(rows)
			if err != nil {
				return err
			}
			items = append(items, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repoPG) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []Status) ([]*Booking, error) {
	var items []*Booking
	err := db.WithRetry(ctx, r.retryAttempts, func(ctx context.Context) error {
		rows, err := r.conn(ctx).Query(ctx, `
			SELECT `+cols+` FROM booking
			WHERE doctor_id = $1 AND visit_date = $2 AND status = ANY($3)
			ORDER BY start_min`,
			doctorID, date, statusStrings(statuses))
		if err != nil {
			return err
		}
		defer rows.Close()

		items = items[:0]
		for rows.Next() {
			b, err := scanBooking(rows)
			if err != nil {
				return err
			}
			items = append(items, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM booking ORDER BY visit_date DESC, start_min LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}
