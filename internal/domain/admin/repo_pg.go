package admin

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

func (r *repoPG) CreateService(ctx context.Context, s *Service) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO servicio (id, name, active) VALUES ($1, $2, $3)`,
		s.ID, s.Name, s.Active)
	return err
}

func (r *repoPG) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	var s Service
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, active, created_at, updated_at FROM servicio WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) ListServices(ctx context.Context, activeOnly bool) ([]*Service, error) {
	q := `SELECT id, name, active, created_at, updated_at FROM servicio`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY name`
	rows, err := r.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *repoPG) UpdateService(ctx context.Context, s *Service) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE servicio SET name=$2, active=$3, updated_at=NOW() WHERE id=$1`,
		s.ID, s.Name, s.Active)
	return err
}

func (r *repoPG) CountRequestsByState(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT state, COUNT(*) FROM solicitud WHERE date >= $1 GROUP BY state`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		out[state] = count
	}
	return out, rows.Err()
}

func (r *repoPG) CountPendingDetails(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM solicitud_detalle WHERE state = 'pendiente'`).Scan(&n)
	return n, err
}

func (r *repoPG) CountCompletionsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM solicitud_detalle WHERE fecha_resultado >= $1`, since).Scan(&n)
	return n, err
}

func (r *repoPG) CountActivePatients(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM paciente WHERE active`).Scan(&n)
	return n, err
}

func (r *repoPG) CountActiveExams(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM examen WHERE active`).Scan(&n)
	return n, err
}
