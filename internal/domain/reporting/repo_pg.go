package reporting

import (
	"context"
	"errors"
	"time"

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

func (r *repoPG) CountByState(ctx context.Context, from, to time.Time) ([]StateCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT state, COUNT(*) FROM solicitud
		WHERE date >= $1 AND date <= $2
		GROUP BY state ORDER BY state`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StateCount
	for rows.Next() {
		var sc StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *repoPG) TopExams(ctx context.Context, from, to time.Time, limit int) ([]ExamCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, e.name, COUNT(*)
		FROM solicitud_detalle d
		JOIN solicitud s ON s.id = d.request_id
		JOIN examen e ON e.id = d.exam_id
		WHERE s.date >= $1 AND s.date <= $2
		GROUP BY e.id, e.name
		ORDER BY COUNT(*) DESC, e.name
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExamCount
	for rows.Next() {
		var ec ExamCount
		if err := rows.Scan(&ec.ExamID, &ec.ExamName, &ec.Count); err != nil {
			return nil, err
		}
		out = append(out, ec)
	}
	return out, rows.Err()
}

func (r *repoPG) DailyVolume(ctx context.Context, from, to time.Time) ([]DailyCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT date_trunc('day', date) AS day, COUNT(*)
		FROM solicitud
		WHERE date >= $1 AND date <= $2
		GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// RequestReport loads the request header and every recorded value joined to
// the field definition it was entered against, in two bulk queries.
func (r *repoPG) RequestReport(ctx context.Context, requestID uuid.UUID) (*RequestReport, error) {
	var report RequestReport
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT s.id, s.date, s.state, s.numero_recibo,
			TRIM(p.first_name || ' ' || p.paternal_name || ' ' || COALESCE(p.maternal_name, '')),
			UPPER(p.document_type) || ' ' || p.document_num
		FROM solicitud s
		JOIN paciente p ON p.id = s.patient_id
		WHERE s.id = $1`, requestID).
		Scan(&report.RequestID, &report.Date, &report.State, &report.ReceiptNumber,
			&report.PatientName, &report.PatientDoc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, e.name, c.name, c.unit, c.reference_range, c.version, c.active,
			v.value, v.out_of_range, v.observation, d.resultado
		FROM solicitud_detalle d
		JOIN examen e ON e.id = d.exam_id
		LEFT JOIN resultado_valor v ON v.detail_id = d.id
		LEFT JOIN campo_examen c ON c.id = v.field_id
		WHERE d.request_id = $1
		ORDER BY d.created_at, c.section NULLS FIRST, c.position`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row ResultRow
		var fieldName, value *string
		var unit, frange, observation, legacy *string
		var version *int
		var active *bool
		var outOfRange *bool
		if err := rows.Scan(&row.DetailID, &row.ExamName, &fieldName, &unit, &frange,
			&version, &active, &value, &outOfRange, &observation, &legacy); err != nil {
			return nil, err
		}
		if fieldName != nil {
			row.FieldName = *fieldName
		}
		row.FieldUnit = unit
		row.FieldRange = frange
		if version != nil {
			row.FieldVersion = *version
		}
		if active != nil {
			row.FieldActive = *active
		}
		if value != nil {
			row.Value = *value
		}
		if outOfRange != nil {
			row.OutOfRange = *outOfRange
		}
		row.Observation = observation
		row.LegacyResult = legacy
		report.Rows = append(report.Rows, row)
	}
	return &report, rows.Err()
}

func (r *repoPG) ListRequests(ctx context.Context, from, to time.Time, state string) ([]RequestListRow, error) {
	q := `
		SELECT s.id, s.date,
			TRIM(p.first_name || ' ' || p.paternal_name || ' ' || COALESCE(p.maternal_name, '')),
			UPPER(p.document_type) || ' ' || p.document_num,
			s.state,
			(SELECT COUNT(*) FROM solicitud_detalle d WHERE d.request_id = s.id),
			(SELECT COUNT(*) FROM solicitud_detalle d
				JOIN resultado_valor v ON v.detail_id = d.id
				WHERE d.request_id = s.id AND v.out_of_range)
		FROM solicitud s
		JOIN paciente p ON p.id = s.patient_id
		WHERE s.date >= $1 AND s.date <= $2`
	args := []interface{}{from, to}
	if state != "" {
		q += ` AND s.state = $3`
		args = append(args, state)
	}
	q += ` ORDER BY s.date DESC`

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RequestListRow
	for rows.Next() {
		var row RequestListRow
		if err := rows.Scan(&row.RequestID, &row.Date, &row.PatientName, &row.PatientDoc,
			&row.State, &row.ExamCount, &row.OutOfRange); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
