package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
)

type AdminService struct {
	repo Repository
}

func NewService(repo Repository) *AdminService {
	return &AdminService{repo: repo}
}

func (s *AdminService) CreateService(ctx context.Context, svc *Service) error {
	if strings.TrimSpace(svc.Name) == "" {
		return fmt.Errorf("name is required: %w", apperror.ErrValidation)
	}
	svc.Active = true
	return s.repo.CreateService(ctx, svc)
}

func (s *AdminService) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *AdminService) ListServices(ctx context.Context, activeOnly bool) ([]*Service, error) {
	return s.repo.ListServices(ctx, activeOnly)
}

func (s *AdminService) UpdateService(ctx context.Context, svc *Service) error {
	if strings.TrimSpace(svc.Name) == "" {
		return fmt.Errorf("name is required: %w", apperror.ErrValidation)
	}
	if _, err := s.repo.GetService(ctx, svc.ID); err != nil {
		return err
	}
	return s.repo.UpdateService(ctx, svc)
}

// BuildDashboard gathers today's and this month's counters.
func (s *AdminService) BuildDashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.repo.CountRequestsByState(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	month, err := s.repo.CountRequestsByState(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountPendingDetails(ctx)
	if err != nil {
		return nil, err
	}
	completions, err := s.repo.CountCompletionsSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	patients, err := s.repo.CountActivePatients(ctx)
	if err != nil {
		return nil, err
	}
	exams, err := s.repo.CountActiveExams(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		RequestsToday:     today,
		RequestsThisMonth: month,
		PendingDetails:    pending,
		RecentCompletions: completions,
		ActivePatients:    patients,
		ActiveExams:       exams,
	}, nil
}
