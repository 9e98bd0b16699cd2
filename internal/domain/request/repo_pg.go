package request

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const reqCols = `id, patient_id, doctor_id, service_id, date, rdr, sis, exonerated,
	numero_recibo, state, created_at, updated_at`

func (r *repoPG) CreateRequest(ctx context.Context, req *Request) error {
	req.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO solicitud (id, patient_id, doctor_id, service_id, date,
			rdr, sis, exonerated, numero_recibo, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID, req.PatientID, req.DoctorID, req.ServiceID, req.Date,
		req.RDR, req.SIS, req.Exonerated, req.ReceiptNumber, req.State)
	return err
}

func scanRequest(row pgx.Row) (*Request, error) {
	var q Request
	err := row.Scan(&q.ID, &q.PatientID, &q.DoctorID, &q.ServiceID, &q.Date,
		&q.RDR, &q.SIS, &q.Exonerated, &q.ReceiptNumber, &q.State,
		&q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repoPG) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reqCols+` FROM solicitud WHERE id = $1`, id))
}

func (r *repoPG) SearchRequests(ctx context.Context, params map[string]string, limit, offset int) ([]*Request, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1
	for param, col := range map[string]string{
		"patient_id": "patient_id",
		"doctor_id":  "doctor_id",
		"service_id": "service_id",
		"state":      "state",
	} {
		if v := params[param]; v != "" {
			where += ` AND ` + col + ` = $` + strconv.Itoa(i)
			args = append(args, v)
			i++
		}
	}
	if from := params["from"]; from != "" {
		where += ` AND date >= $` + strconv.Itoa(i)
		args = append(args, from)
		i++
	}
	if to := params["to"]; to != "" {
		where += ` AND date <= $` + strconv.Itoa(i)
		args = append(args, to)
		i++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM solicitud`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reqCols+` FROM solicitud`+where+
			` ORDER BY date DESC, created_at DESC LIMIT $`+strconv.Itoa(i)+` OFFSET $`+strconv.Itoa(i+1),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Request
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UpdateRequest(ctx context.Context, req *Request) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE solicitud SET patient_id=$2, doctor_id=$3, service_id=$4, date=$5,
			rdr=$6, sis=$7, exonerated=$8, numero_recibo=$9, updated_at=NOW()
		WHERE id=$1`,
		req.ID, req.PatientID, req.DoctorID, req.ServiceID, req.Date,
		req.RDR, req.SIS, req.Exonerated, req.ReceiptNumber)
	return err
}

func (r *repoPG) UpdateRequestState(ctx context.Context, id uuid.UUID, state string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE solicitud SET state=$2, updated_at=NOW() WHERE id=$1`, id, state)
	return err
}

func (r *repoPG) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM solicitud WHERE id = $1`, id)
	return err
}

const detailCols = `id, request_id, exam_id, state, resultado, observations,
	fecha_resultado, registrado_por, created_at, updated_at`

func (r *repoPG) CreateDetail(ctx context.Context, d *RequestDetail) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO solicitud_detalle (id, request_id, exam_id, state, resultado,
			observations, fecha_resultado, registrado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.RequestID, d.ExamID, d.State, d.LegacyResult,
		d.Observations, d.ResultDate, d.RecordedBy)
	return err
}

func scanDetail(row pgx.Row) (*RequestDetail, error) {
	var d RequestDetail
	err := row.Scan(&d.ID, &d.RequestID, &d.ExamID, &d.State, &d.LegacyResult,
		&d.Observations, &d.ResultDate, &d.RecordedBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) GetDetail(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	return scanDetail(r.conn(ctx).QueryRow(ctx,
		`SELECT `+detailCols+` FROM solicitud_detalle WHERE id = $1`, id))
}

func (r *repoPG) ListDetails(ctx context.Context, requestID uuid.UUID) ([]*RequestDetail, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+detailCols+` FROM solicitud_detalle WHERE request_id = $1 ORDER BY created_at`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RequestDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) UpdateDetail(ctx context.Context, d *RequestDetail) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE solicitud_detalle SET state=$2, resultado=$3, observations=$4,
			fecha_resultado=$5, registrado_por=$6, updated_at=NOW()
		WHERE id=$1`,
		d.ID, d.State, d.LegacyResult, d.Observations, d.ResultDate, d.RecordedBy)
	return err
}

// UpsertValue inserts the value or, when the (detail, field) pair already has
// one, overwrites it in place.
func (r *repoPG) UpsertValue(ctx context.Context, v *ResultValue) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO resultado_valor (id, detail_id, field_id, value, observation, out_of_range)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (detail_id, field_id) DO UPDATE SET
			value = EXCLUDED.value,
			observation = EXCLUDED.observation,
			out_of_range = EXCLUDED.out_of_range,
			updated_at = NOW()`,
		v.ID, v.DetailID, v.FieldID, v.Value, v.Observation, v.OutOfRange)
	return err
}

func (r *repoPG) ListValues(ctx context.Context, detailID uuid.UUID) ([]*ResultValue, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, detail_id, field_id, value, observation, out_of_range, created_at, updated_at
		FROM resultado_valor WHERE detail_id = $1 ORDER BY created_at`, detailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ResultValue
	for rows.Next() {
		var v ResultValue
		if err := rows.Scan(&v.ID, &v.DetailID, &v.FieldID, &v.Value, &v.Observation,
			&v.OutOfRange, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
