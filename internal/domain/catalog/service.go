package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/db"
)

type Service struct {
	repo   Repository
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(repo Repository, pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{repo: repo, pool: pool, logger: logger}
}

func (s *Service) inTx(ctx context.Context, fn func(context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// --- Categories ---

func (s *Service) CreateCategory(ctx context.Context, cat *ExamCategory) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("name is required: %w", apperror.ErrValidation)
	}
	cat.Active = true
	return s.repo.CreateCategory(ctx, cat)
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*ExamCategory, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]*ExamCategory, error) {
	return s.repo.ListCategories(ctx, activeOnly)
}

func (s *Service) UpdateCategory(ctx context.Context, cat *ExamCategory) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("name is required: %w", apperror.ErrValidation)
	}
	if _, err := s.repo.GetCategory(ctx, cat.ID); err != nil {
		return err
	}
	return s.repo.UpdateCategory(ctx, cat)
}

// --- Exams ---

func (s *Service) CreateExam(ctx context.Context, exam *Exam) error {
	if strings.TrimSpace(exam.Code) == "" || strings.TrimSpace(exam.Name) == "" {
		return fmt.Errorf("code and name are required: %w", apperror.ErrValidation)
	}
	if exam.Kind == "" {
		exam.Kind = KindSimple
	}
	if !validKind(exam.Kind) {
		return fmt.Errorf("invalid kind %q: %w", exam.Kind, apperror.ErrValidation)
	}
	if _, err := s.repo.GetCategory(ctx, exam.CategoryID); err != nil {
		return fmt.Errorf("category %s: %w", exam.CategoryID, err)
	}
	exam.Active = true
	return s.repo.CreateExam(ctx, exam)
}

func (s *Service) GetExam(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return s.repo.GetExam(ctx, id)
}

func (s *Service) SearchExams(ctx context.Context, params map[string]string, limit, offset int) ([]*Exam, int, error) {
	return s.repo.SearchExams(ctx, params, limit, offset)
}

func (s *Service) UpdateExam(ctx context.Context, exam *Exam) error {
	current, err := s.repo.GetExam(ctx, exam.ID)
	if err != nil {
		return err
	}
	if !validKind(exam.Kind) {
		return fmt.Errorf("invalid kind %q: %w", exam.Kind, apperror.ErrValidation)
	}
	// Narrowing a composite exam that still has children would orphan them.
	if exam.Kind == KindSimple && current.Kind != KindSimple {
		children, err := s.repo.ListChildren(ctx, exam.ID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return fmt.Errorf("exam still has %d children: %w", len(children), apperror.ErrValidation)
		}
	}
	return s.repo.UpdateExam(ctx, exam)
}

// DeleteExam hard-deletes an unreferenced exam. Once a request detail or a
// parent exam references it, only deactivation is allowed.
func (s *Service) DeleteExam(ctx context.Context, id uuid.UUID) error {
	exam, err := s.repo.GetExam(ctx, id)
	if err != nil {
		return err
	}
	referenced, err := s.repo.ExamReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		exam.Active = false
		if err := s.repo.UpdateExam(ctx, exam); err != nil {
			return err
		}
		s.logger.Info().Str("exam_id", id.String()).Msg("referenced exam deactivated instead of deleted")
		return nil
	}
	return s.repo.DeleteExam(ctx, id)
}

// --- Composition ---

// AddChild adds an ordered child to a composite or hybrid exam. The edge is
// rejected with ErrCycle when the parent is reachable from the child, at any
// depth, through existing composition edges.
func (s *Service) AddChild(ctx context.Context, parentID, childID uuid.UUID, position int) (*ExamChild, error) {
	parent, err := s.repo.GetExam(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("parent exam: %w", err)
	}
	if parent.Kind == KindSimple {
		return nil, fmt.Errorf("simple exam cannot have children: %w", apperror.ErrValidation)
	}
	if _, err := s.repo.GetExam(ctx, childID); err != nil {
		return nil, fmt.Errorf("child exam: %w", err)
	}
	if parentID == childID {
		return nil, fmt.Errorf("exam cannot contain itself: %w", apperror.ErrCycle)
	}

	cyclic, err := s.reachable(ctx, childID, parentID)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, fmt.Errorf("exam %s already contains %s: %w", childID, parentID, apperror.ErrCycle)
	}

	edge := &ExamChild{ParentID: parentID, ChildID: childID, Position: position, Active: true}
	if err := s.repo.AddChild(ctx, edge); err != nil {
		return nil, err
	}
	return edge, nil
}

// reachable walks composition edges downward from `from` and reports whether
// `target` appears among its descendants.
func (s *Service) reachable(ctx context.Context, from, target uuid.UUID) (bool, error) {
	seen := map[uuid.UUID]bool{from: true}
	queue := []uuid.UUID{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.repo.ListChildren(ctx, current)
		if err != nil {
			return false, err
		}
		for _, edge := range children {
			if edge.ChildID == target {
				return true, nil
			}
			if !seen[edge.ChildID] {
				seen[edge.ChildID] = true
				queue = append(queue, edge.ChildID)
			}
		}
	}
	return false, nil
}

func (s *Service) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*ExamChild, error) {
	if _, err := s.repo.GetExam(ctx, parentID); err != nil {
		return nil, err
	}
	return s.repo.ListChildren(ctx, parentID)
}

func (s *Service) RemoveChild(ctx context.Context, parentID, childID uuid.UUID) error {
	return s.repo.RemoveChild(ctx, parentID, childID)
}

// --- Fields ---

func (s *Service) validateField(f *FieldDefinition) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field name is required: %w", apperror.ErrValidation)
	}
	if !validFieldType(f.Type) {
		return fmt.Errorf("invalid field type %q: %w", f.Type, apperror.ErrValidation)
	}
	if f.Type == FieldSelect && len(f.Options) == 0 {
		return fmt.Errorf("select field needs options: %w", apperror.ErrValidation)
	}
	return nil
}

func (s *Service) CreateField(ctx context.Context, f *FieldDefinition) error {
	if err := s.validateField(f); err != nil {
		return err
	}
	if _, err := s.repo.GetExam(ctx, f.ExamID); err != nil {
		return fmt.Errorf("exam %s: %w", f.ExamID, err)
	}
	f.Active = true
	f.Version = 1
	return s.repo.CreateField(ctx, f)
}

func (s *Service) GetField(ctx context.Context, id uuid.UUID) (*FieldDefinition, error) {
	return s.repo.GetField(ctx, id)
}

func (s *Service) ListFields(ctx context.Context, examID uuid.UUID, activeOnly bool) ([]*FieldDefinition, error) {
	if _, err := s.repo.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	return s.repo.ListFields(ctx, examID, activeOnly)
}

// UpdateField edits a field definition. A field with no recorded values is
// updated in place. A field that already backs result values is immutable:
// the edit lands on a fresh row with Version+1 and the old row is deactivated
// with the given reason, so historical results keep their definition.
func (s *Service) UpdateField(ctx context.Context, id uuid.UUID, update FieldUpdate) (*FieldDefinition, error) {
	current, err := s.repo.GetField(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Active {
		return nil, fmt.Errorf("field %s is deactivated: %w", id, apperror.ErrValidation)
	}

	hasValues, err := s.repo.FieldHasValues(ctx, id)
	if err != nil {
		return nil, err
	}

	if !hasValues {
		update.apply(current)
		if err := s.validateField(current); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateField(ctx, current); err != nil {
			return nil, err
		}
		return current, nil
	}

	next := *current
	update.apply(&next)
	next.Version = current.Version + 1
	next.DeactivatedAt = nil
	next.DeactivationReason = nil
	if err := s.validateField(&next); err != nil {
		return nil, err
	}

	reason := update.Reason
	if reason == "" {
		reason = "superseded by version update"
	}
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeactivateField(ctx, current.ID, reason); err != nil {
			return err
		}
		return s.repo.CreateField(ctx, &next)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("field_id", id.String()).
		Int("old_version", current.Version).
		Int("new_version", next.Version).
		Msg("field definition versioned")
	return &next, nil
}

// DeactivateField retires a field without touching recorded values.
func (s *Service) DeactivateField(ctx context.Context, id uuid.UUID, reason string) error {
	if _, err := s.repo.GetField(ctx, id); err != nil {
		return err
	}
	return s.repo.DeactivateField(ctx, id, reason)
}

// DeleteField hard-deletes a field. Rejected with ErrFieldInUse once any
// result value references it.
func (s *Service) DeleteField(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetField(ctx, id); err != nil {
		return err
	}
	hasValues, err := s.repo.FieldHasValues(ctx, id)
	if err != nil {
		return err
	}
	if hasValues {
		return fmt.Errorf("field %s: %w", id, apperror.ErrFieldInUse)
	}
	return s.repo.DeleteField(ctx, id)
}

// ResolveAllFields builds the complete entry form for an exam: its own active
// fields plus, for composite and hybrid exams, the active fields of each
// active child in child order, namespaced by the child exam's name. An exam
// with no fields resolves to an empty form.
func (s *Service) ResolveAllFields(ctx context.Context, examID uuid.UUID) ([]ResolvedField, error) {
	exam, err := s.repo.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	out := []ResolvedField{}

	if exam.Kind != KindComposite {
		own, err := s.repo.ListFields(ctx, examID, true)
		if err != nil {
			return nil, err
		}
		for _, f := range own {
			out = append(out, ResolvedField{
				FieldDefinition: *f,
				SourceExamID:    exam.ID,
				SourceExamName:  exam.Name,
			})
		}
	}

	if exam.Kind == KindSimple {
		return out, nil
	}

	edges, err := s.repo.ListChildren(ctx, examID)
	if err != nil {
		return nil, err
	}
	for _, edge := range edges {
		if !edge.Active {
			continue
		}
		child, err := s.repo.GetExam(ctx, edge.ChildID)
		if err != nil {
			return nil, err
		}
		if !child.Active {
			continue
		}
		fields, err := s.repo.ListFields(ctx, child.ID, true)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			out = append(out, ResolvedField{
				FieldDefinition: *f,
				SourceExamID:    child.ID,
				SourceExamName:  child.Name,
				Namespace:       child.Name,
			})
		}
	}
	return out, nil
}
