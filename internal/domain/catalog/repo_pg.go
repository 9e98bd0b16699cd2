package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.Duplicatef(pgErr.ConstraintName)
	}
	return err
}

// --- Categories ---

const catCols = `id, name, active, created_at, updated_at`

func (r *repoPG) CreateCategory(ctx context.Context, cat *ExamCategory) error {
	cat.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO categoria_examen (id, name, active) VALUES ($1, $2, $3)`,
		cat.ID, cat.Name, cat.Active)
	return mapPgError(err)
}

func scanCategory(row pgx.Row) (*ExamCategory, error) {
	var c ExamCategory
	err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) GetCategory(ctx context.Context, id uuid.UUID) (*ExamCategory, error) {
	return scanCategory(r.conn(ctx).QueryRow(ctx,
		`SELECT `+catCols+` FROM categoria_examen WHERE id = $1`, id))
}

func (r *repoPG) ListCategories(ctx context.Context, activeOnly bool) ([]*ExamCategory, error) {
	q := `SELECT ` + catCols + ` FROM categoria_examen`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY name`
	rows, err := r.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExamCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repoPG) UpdateCategory(ctx context.Context, cat *ExamCategory) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE categoria_examen SET name=$2, active=$3, updated_at=NOW() WHERE id=$1`,
		cat.ID, cat.Name, cat.Active)
	return mapPgError(err)
}

// --- Exams ---

const examCols = `id, code, name, category_id, kind, is_profile, active, created_at, updated_at`

func (r *repoPG) CreateExam(ctx context.Context, exam *Exam) error {
	exam.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO examen (id, code, name, category_id, kind, is_profile, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		exam.ID, exam.Code, exam.Name, exam.CategoryID, exam.Kind, exam.IsProfile, exam.Active)
	return mapPgError(err)
}

func scanExam(row pgx.Row) (*Exam, error) {
	var e Exam
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.CategoryID, &e.Kind, &e.IsProfile,
		&e.Active, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) GetExam(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return scanExam(r.conn(ctx).QueryRow(ctx,
		`SELECT `+examCols+` FROM examen WHERE id = $1`, id))
}

func (r *repoPG) GetExamByCode(ctx context.Context, code string) (*Exam, error) {
	return scanExam(r.conn(ctx).QueryRow(ctx,
		`SELECT `+examCols+` FROM examen WHERE code = $1`, code))
}

func (r *repoPG) SearchExams(ctx context.Context, params map[string]string, limit, offset int) ([]*Exam, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1
	if q := params["q"]; q != "" {
		where += ` AND (name ILIKE '%' || $` + strconv.Itoa(i) + ` || '%' OR code ILIKE '%' || $` + strconv.Itoa(i) + ` || '%')`
		args = append(args, q)
		i++
	}
	if kind := params["kind"]; kind != "" {
		where += ` AND kind = $` + strconv.Itoa(i)
		args = append(args, kind)
		i++
	}
	if cat := params["category_id"]; cat != "" {
		where += ` AND category_id = $` + strconv.Itoa(i)
		args = append(args, cat)
		i++
	}
	if params["include_inactive"] != "true" {
		where += ` AND active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM examen`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+examCols+` FROM examen`+where+
			` ORDER BY name LIMIT $`+strconv.Itoa(i)+` OFFSET $`+strconv.Itoa(i+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UpdateExam(ctx context.Context, exam *Exam) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE examen SET code=$2, name=$3, category_id=$4, kind=$5, is_profile=$6,
			active=$7, updated_at=NOW()
		WHERE id=$1`,
		exam.ID, exam.Code, exam.Name, exam.CategoryID, exam.Kind, exam.IsProfile, exam.Active)
	return mapPgError(err)
}

// ExamReferenced reports whether the exam appears in any request detail or
// as a child of another exam.
func (r *repoPG) ExamReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var referenced bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM solicitud_detalle WHERE exam_id = $1)
		    OR EXISTS (SELECT 1 FROM examen_hijo WHERE child_id = $1)`, id).Scan(&referenced)
	return referenced, err
}

func (r *repoPG) DeleteExam(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM examen WHERE id = $1`, id)
	return err
}

// --- Composition ---

func (r *repoPG) AddChild(ctx context.Context, edge *ExamChild) error {
	edge.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO examen_hijo (id, parent_id, child_id, position, active)
		VALUES ($1, $2, $3, $4, $5)`,
		edge.ID, edge.ParentID, edge.ChildID, edge.Position, edge.Active)
	return mapPgError(err)
}

func (r *repoPG) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*ExamChild, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, parent_id, child_id, position, active
		FROM examen_hijo WHERE parent_id = $1 ORDER BY position`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ExamChild
	for rows.Next() {
		var e ExamChild
		if err := rows.Scan(&e.ID, &e.ParentID, &e.ChildID, &e.Position, &e.Active); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *repoPG) ListParentIDs(ctx context.Context, childID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT parent_id FROM examen_hijo WHERE child_id = $1`, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repoPG) RemoveChild(ctx context.Context, parentID, childID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM examen_hijo WHERE parent_id = $1 AND child_id = $2`, parentID, childID)
	return err
}

// --- Fields ---

const fieldCols = `id, exam_id, name, type, unit, reference_range, options, section,
	position, required, active, version, deactivated_at, deactivation_reason,
	created_at, updated_at`

func (r *repoPG) CreateField(ctx context.Context, f *FieldDefinition) error {
	f.ID = uuid.New()
	if f.Version == 0 {
		f.Version = 1
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO campo_examen (id, exam_id, name, type, unit, reference_range,
			options, section, position, required, active, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		f.ID, f.ExamID, f.Name, f.Type, f.Unit, f.ReferenceRange,
		f.Options, f.Section, f.Position, f.Required, f.Active, f.Version)
	return mapPgError(err)
}

func scanField(row pgx.Row) (*FieldDefinition, error) {
	var f FieldDefinition
	err := row.Scan(&f.ID, &f.ExamID, &f.Name, &f.Type, &f.Unit, &f.ReferenceRange,
		&f.Options, &f.Section, &f.Position, &f.Required, &f.Active, &f.Version,
		&f.DeactivatedAt, &f.DeactivationReason, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repoPG) GetField(ctx context.Context, id uuid.UUID) (*FieldDefinition, error) {
	return scanField(r.conn(ctx).QueryRow(ctx,
		`SELECT `+fieldCols+` FROM campo_examen WHERE id = $1`, id))
}

func (r *repoPG) ListFields(ctx context.Context, examID uuid.UUID, activeOnly bool) ([]*FieldDefinition, error) {
	q := `SELECT ` + fieldCols + ` FROM campo_examen WHERE exam_id = $1`
	if activeOnly {
		q += ` AND active`
	}
	q += ` ORDER BY section NULLS FIRST, position`
	rows, err := r.conn(ctx).Query(ctx, q, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FieldDefinition
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repoPG) UpdateField(ctx context.Context, f *FieldDefinition) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE campo_examen SET name=$2, type=$3, unit=$4, reference_range=$5,
			options=$6, section=$7, position=$8, required=$9, updated_at=NOW()
		WHERE id=$1`,
		f.ID, f.Name, f.Type, f.Unit, f.ReferenceRange,
		f.Options, f.Section, f.Position, f.Required)
	return mapPgError(err)
}

func (r *repoPG) DeactivateField(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE campo_examen SET active=false, deactivated_at=NOW(),
			deactivation_reason=$2, updated_at=NOW()
		WHERE id=$1`, id, reason)
	return err
}

func (r *repoPG) FieldHasValues(ctx context.Context, id uuid.UUID) (bool, error) {
	var has bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM resultado_valor WHERE field_id = $1)`, id).Scan(&has)
	return has, err
}

func (r *repoPG) DeleteField(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM campo_examen WHERE id = $1`, id)
	return err
}
