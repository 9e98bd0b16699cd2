package patient

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

const patientCols = `id, document_type, document_num, first_name, paternal_name,
	maternal_name, birth_date, sex, phone, address, active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO paciente (id, document_type, document_num, first_name,
			paternal_name, maternal_name, birth_date, sex, phone, address, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.DocumentType, p.DocumentNum, p.FirstName,
		p.PaternalName, p.MaternalName, p.BirthDate, p.Sex, p.Phone, p.Address, p.Active)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.Duplicatef("document_num")
	}
	return err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.DocumentType, &p.DocumentNum, &p.FirstName, &p.PaternalName,
		&p.MaternalName, &p.BirthDate, &p.Sex, &p.Phone, &p.Address,
		&p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM paciente WHERE id = $1`, id))
}

func (r *repoPG) GetByDocument(ctx context.Context, docType, docNum string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM paciente WHERE document_type = $1 AND document_num = $2`,
		docType, docNum))
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	i := 1
	if doc := params["document"]; doc != "" {
		where += ` AND document_num = $` + strconv.Itoa(i)
		args = append(args, doc)
		i++
	}
	if name := params["name"]; name != "" {
		where += ` AND (first_name ILIKE '%' || $` + strconv.Itoa(i) +
			` || '%' OR paternal_name ILIKE '%' || $` + strconv.Itoa(i) +
			` || '%' OR maternal_name ILIKE '%' || $` + strconv.Itoa(i) + ` || '%')`
		args = append(args, name)
		i++
	}
	if params["include_inactive"] != "true" {
		where += ` AND active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM paciente`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM paciente`+where+
			` ORDER BY paternal_name, first_name LIMIT $`+strconv.Itoa(i)+` OFFSET $`+strconv.Itoa(i+1),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE paciente SET document_type=$2, document_num=$3, first_name=$4,
			paternal_name=$5, maternal_name=$6, birth_date=$7, sex=$8, phone=$9,
			address=$10, active=$11, updated_at=NOW()
		WHERE id=$1`,
		p.ID, p.DocumentType, p.DocumentNum, p.FirstName,
		p.PaternalName, p.MaternalName, p.BirthDate, p.Sex, p.Phone, p.Address, p.Active)
	return err
}

func (r *repoPG) Referenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var referenced bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM solicitud WHERE patient_id = $1)`, id).Scan(&referenced)
	return referenced, err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM paciente WHERE id = $1`, id)
	return err
}
