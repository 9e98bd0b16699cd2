package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByDocument(ctx context.Context, docType, docNum string) (*Patient, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	Referenced(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
