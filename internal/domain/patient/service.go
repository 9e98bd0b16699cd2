package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/reniec"
)

// RegistryLookup resolves a DNI to person data for form autofill.
type RegistryLookup interface {
	Lookup(ctx context.Context, dni string) (*reniec.Person, error)
	Enabled() bool
}

type Service struct {
	repo     Repository
	registry RegistryLookup
	logger   zerolog.Logger
}

func NewService(repo Repository, registry RegistryLookup, logger zerolog.Logger) *Service {
	return &Service{repo: repo, registry: registry, logger: logger}
}

func (s *Service) validate(p *Patient) error {
	if !validDocumentType(p.DocumentType) {
		return fmt.Errorf("invalid document type %q: %w", p.DocumentType, apperror.ErrValidation)
	}
	if strings.TrimSpace(p.DocumentNum) == "" {
		return fmt.Errorf("document number is required: %w", apperror.ErrValidation)
	}
	if p.DocumentType == DocDNI && len(p.DocumentNum) != 8 {
		return fmt.Errorf("dni must have 8 digits: %w", apperror.ErrValidation)
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.PaternalName) == "" {
		return fmt.Errorf("first and paternal names are required: %w", apperror.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.DocumentType == "" {
		p.DocumentType = DocDNI
	}
	if err := s.validate(p); err != nil {
		return err
	}
	if _, err := s.repo.GetByDocument(ctx, p.DocumentType, p.DocumentNum); err == nil {
		return apperror.Duplicatef("document_num")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.validate(p); err != nil {
		return err
	}
	if p.DocumentNum != current.DocumentNum || p.DocumentType != current.DocumentType {
		if other, err := s.repo.GetByDocument(ctx, p.DocumentType, p.DocumentNum); err == nil && other.ID != p.ID {
			return apperror.Duplicatef("document_num")
		} else if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a patient without requests; one with request history is
// deactivated instead.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	referenced, err := s.repo.Referenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		p.Active = false
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		s.logger.Info().Str("patient_id", id.String()).Msg("patient with history deactivated instead of deleted")
		return nil
	}
	return s.repo.Delete(ctx, id)
}

// LookupDNI queries the identity registry. The result is advisory: callers
// use it to prefill the registration form and may register without it.
func (s *Service) LookupDNI(ctx context.Context, dni string) (*reniec.Person, error) {
	if s.registry == nil || !s.registry.Enabled() {
		return nil, fmt.Errorf("registry lookup not configured: %w", apperror.ErrValidation)
	}
	person, err := s.registry.Lookup(ctx, dni)
	if err != nil {
		s.logger.Warn().Err(err).Str("dni", dni).Msg("registry lookup failed")
		return nil, err
	}
	return person, nil
}
