package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateService(ctx context.Context, s *Service) error
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]*Service, error)
	UpdateService(ctx context.Context, s *Service) error

	CountRequestsByState(ctx context.Context, since time.Time) (map[string]int, error)
	CountPendingDetails(ctx context.Context) (int, error)
	CountCompletionsSince(ctx context.Context, since time.Time) (int, error)
	CountActivePatients(ctx context.Context) (int, error)
	CountActiveExams(ctx context.Context) (int, error)
}
