package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/catalog"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/patient"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/db"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/notification"
)

// CatalogReader is the slice of the catalog the workflow needs.
type CatalogReader interface {
	GetExam(ctx context.Context, id uuid.UUID) (*catalog.Exam, error)
	GetField(ctx context.Context, id uuid.UUID) (*catalog.FieldDefinition, error)
	ResolveAllFields(ctx context.Context, examID uuid.UUID) ([]catalog.ResolvedField, error)
}

// PatientReader resolves patients for validation and event snapshots.
type PatientReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// EventPublisher receives workflow events. Publishing must never fail the
// mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt notification.Event)
}

type Service struct {
	repo     Repository
	catalog  CatalogReader
	patients PatientReader
	events   EventPublisher
	pool     *pgxpool.Pool
	logger   zerolog.Logger
}

func NewService(repo Repository, cat CatalogReader, patients PatientReader, events EventPublisher, pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{repo: repo, catalog: cat, patients: patients, events: events, pool: pool, logger: logger}
}

func (s *Service) inTx(ctx context.Context, fn func(context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

func (s *Service) publish(ctx context.Context, eventType string, req *Request) {
	if s.events == nil {
		return
	}
	evt := notification.Event{
		Type:      eventType,
		RequestID: req.ID.String(),
		PatientID: req.PatientID.String(),
		State:     req.State,
	}
	if req.DoctorID != nil {
		evt.DoctorID = req.DoctorID.String()
	}
	details := req.Details
	if len(details) == 0 {
		if dd, err := s.repo.ListDetails(ctx, req.ID); err == nil {
			details = dd
		}
	}
	for _, d := range details {
		evt.ExamIDs = append(evt.ExamIDs, d.ExamID.String())
	}
	if s.patients != nil {
		if p, err := s.patients.GetByID(ctx, req.PatientID); err == nil {
			evt.PatientName = p.FullName()
		}
	}
	s.events.Publish(ctx, evt)
}

// --- Requests ---

// Create registers a request with one pendiente detail per ordered exam.
func (s *Service) Create(ctx context.Context, req *Request, examIDs []uuid.UUID) error {
	if len(examIDs) == 0 {
		return fmt.Errorf("a request needs at least one exam: %w", apperror.ErrValidation)
	}
	if _, err := s.patients.GetByID(ctx, req.PatientID); err != nil {
		return fmt.Errorf("patient %s: %w", req.PatientID, err)
	}
	seen := make(map[uuid.UUID]bool, len(examIDs))
	for _, examID := range examIDs {
		if seen[examID] {
			return fmt.Errorf("exam %s ordered twice: %w", examID, apperror.ErrValidation)
		}
		seen[examID] = true
		exam, err := s.catalog.GetExam(ctx, examID)
		if err != nil {
			return fmt.Errorf("exam %s: %w", examID, err)
		}
		if !exam.Active {
			return fmt.Errorf("exam %s is inactive: %w", exam.Code, apperror.ErrValidation)
		}
	}

	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}
	req.State = StatePending

	err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateRequest(ctx, req); err != nil {
			return err
		}
		for _, examID := range examIDs {
			d := &RequestDetail{RequestID: req.ID, ExamID: examID, State: StatePending}
			if err := s.repo.CreateDetail(ctx, d); err != nil {
				return err
			}
			req.Details = append(req.Details, d)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, notification.EventRequestCreated, req)
	return nil
}

// Get returns the request with its details and their values.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.ListDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		values, err := s.repo.ListValues(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		d.Values = values
	}
	req.Details = details
	return req, nil
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Request, int, error) {
	return s.repo.SearchRequests(ctx, params, limit, offset)
}

// Update edits request metadata (flags, receipt, ordering doctor). State is
// never written here: it is always derived from the details.
func (s *Service) Update(ctx context.Context, req *Request) error {
	current, err := s.repo.GetRequest(ctx, req.ID)
	if err != nil {
		return err
	}
	req.State = current.State
	if err := s.repo.UpdateRequest(ctx, req); err != nil {
		return err
	}
	s.publish(ctx, notification.EventRequestUpdated, req)
	return nil
}

// Delete removes a request that has not been worked on yet.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.State != StatePending {
		return fmt.Errorf("only pendiente requests can be deleted: %w", apperror.ErrValidation)
	}
	return s.repo.DeleteRequest(ctx, id)
}

func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*RequestDetail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	values, err := s.repo.ListValues(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Values = values
	return d, nil
}

// --- Result entry ---

// validateFieldForDetail checks that the field can receive a value for this
// detail: it must belong to the detail's exam or one of its composed
// children, and must still be active.
func (s *Service) validateFieldForDetail(ctx context.Context, d *RequestDetail, field *catalog.FieldDefinition) error {
	if field.ExamID != d.ExamID {
		resolved, err := s.catalog.ResolveAllFields(ctx, d.ExamID)
		if err != nil {
			return err
		}
		belongs := false
		for _, rf := range resolved {
			if rf.SourceExamID == field.ExamID {
				belongs = true
				break
			}
		}
		if !belongs {
			return fmt.Errorf("field %s belongs to exam %s: %w", field.ID, field.ExamID, apperror.ErrFieldMismatch)
		}
	}
	if !field.Active {
		return fmt.Errorf("field %s is deactivated: %w", field.ID, apperror.ErrValidation)
	}
	return nil
}

// RecordValue records one field value for a detail and re-derives the detail
// and request states in the same transaction. The returned warning, when not
// empty, reports an unevaluable reference range; the value is saved anyway.
func (s *Service) RecordValue(ctx context.Context, detailID, fieldID uuid.UUID, raw string, observation *string, actor string) (*ResultValue, string, error) {
	d, err := s.repo.GetDetail(ctx, detailID)
	if err != nil {
		return nil, "", fmt.Errorf("detail %s: %w", detailID, err)
	}
	field, err := s.catalog.GetField(ctx, fieldID)
	if err != nil {
		return nil, "", fmt.Errorf("field %s: %w", fieldID, err)
	}
	if err := s.validateFieldForDetail(ctx, d, field); err != nil {
		return nil, "", err
	}

	normalized, err := interpretValue(field, raw)
	if err != nil {
		return nil, "", err
	}
	outOfRange, warning := evaluateRange(field, normalized)
	if warning != "" {
		s.logger.Warn().
			Str("field_id", fieldID.String()).
			Str("detail_id", detailID.String()).
			Msg(warning)
	}

	value := &ResultValue{
		DetailID:    detailID,
		FieldID:     fieldID,
		Value:       normalized,
		Observation: observation,
		OutOfRange:  outOfRange,
	}

	var transition stateTransition
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpsertValue(ctx, value); err != nil {
			return err
		}
		transition, err = s.recompute(ctx, detailID, actor)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	s.publishTransition(ctx, transition)
	return value, warning, nil
}

// SubmitValues records a batch of values for a detail. Each value succeeds or
// fails on its own; states are re-derived once at the end for the values that
// were saved.
func (s *Service) SubmitValues(ctx context.Context, detailID uuid.UUID, inputs []ValueInput, actor string) ([]ValueOutcome, error) {
	d, err := s.repo.GetDetail(ctx, detailID)
	if err != nil {
		return nil, fmt.Errorf("detail %s: %w", detailID, err)
	}

	outcomes := make([]ValueOutcome, 0, len(inputs))
	var transition stateTransition
	err = s.inTx(ctx, func(ctx context.Context) error {
		saved := 0
		for _, in := range inputs {
			outcome := ValueOutcome{FieldID: in.FieldID}

			field, err := s.catalog.GetField(ctx, in.FieldID)
			if err != nil {
				outcome.Error = err.Error()
				outcomes = append(outcomes, outcome)
				continue
			}
			if err := s.validateFieldForDetail(ctx, d, field); err != nil {
				outcome.Error = err.Error()
				outcomes = append(outcomes, outcome)
				continue
			}
			normalized, err := interpretValue(field, in.Value)
			if err != nil {
				outcome.Error = err.Error()
				outcomes = append(outcomes, outcome)
				continue
			}
			outOfRange, warning := evaluateRange(field, normalized)
			outcome.Warning = warning

			if err := s.repo.UpsertValue(ctx, &ResultValue{
				DetailID:    detailID,
				FieldID:     in.FieldID,
				Value:       normalized,
				Observation: in.Observation,
				OutOfRange:  outOfRange,
			}); err != nil {
				return err
			}
			outcome.Saved = true
			saved++
			outcomes = append(outcomes, outcome)
		}

		if saved == 0 {
			return nil
		}
		var err error
		transition, err = s.recompute(ctx, detailID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(ctx, transition)
	return outcomes, nil
}

// stateTransition captures a recompute result for event emission after the
// transaction commits.
type stateTransition struct {
	request  *Request
	oldState string
	newState string
}

// recompute re-derives the detail state from its values, stamps completion
// metadata, and then re-derives the owning request's state.
func (s *Service) recompute(ctx context.Context, detailID uuid.UUID, actor string) (stateTransition, error) {
	d, err := s.repo.GetDetail(ctx, detailID)
	if err != nil {
		return stateTransition{}, err
	}

	resolved, err := s.catalog.ResolveAllFields(ctx, d.ExamID)
	if err != nil {
		return stateTransition{}, err
	}
	var required []uuid.UUID
	for _, rf := range resolved {
		if rf.Required {
			required = append(required, rf.ID)
		}
	}

	values, err := s.repo.ListValues(ctx, detailID)
	if err != nil {
		return stateTransition{}, err
	}
	valued := make(map[uuid.UUID]bool, len(values))
	for _, v := range values {
		valued[v.FieldID] = true
	}

	newState := EvaluateDetailState(required, len(resolved), valued, d.LegacyResult != nil && *d.LegacyResult != "")
	if newState != d.State {
		d.State = newState
		if newState == StateCompleted {
			now := time.Now().UTC()
			d.ResultDate = &now
			if actor != "" {
				d.RecordedBy = &actor
			}
		} else {
			d.ResultDate = nil
			d.RecordedBy = nil
		}
		if err := s.repo.UpdateDetail(ctx, d); err != nil {
			return stateTransition{}, err
		}
	}

	req, err := s.repo.GetRequest(ctx, d.RequestID)
	if err != nil {
		return stateTransition{}, err
	}
	details, err := s.repo.ListDetails(ctx, d.RequestID)
	if err != nil {
		return stateTransition{}, err
	}
	states := make([]string, len(details))
	for i, dd := range details {
		states[i] = dd.State
	}

	transition := stateTransition{request: req, oldState: req.State, newState: EvaluateRequestState(states)}
	if transition.newState != req.State {
		if err := s.repo.UpdateRequestState(ctx, req.ID, transition.newState); err != nil {
			return stateTransition{}, err
		}
		req.State = transition.newState
	}
	return transition, nil
}

func (s *Service) publishTransition(ctx context.Context, t stateTransition) {
	if t.request == nil || t.oldState == t.newState {
		return
	}
	if t.newState == StateCompleted {
		s.publish(ctx, notification.EventRequestCompleted, t.request)
		return
	}
	s.publish(ctx, notification.EventRequestUpdated, t.request)
}

// RecordLegacyResult stores the free-text resultado on a detail, for exams
// that have no structured fields, and re-derives states.
func (s *Service) RecordLegacyResult(ctx context.Context, detailID uuid.UUID, result string, observations *string, actor string) (*RequestDetail, error) {
	d, err := s.repo.GetDetail(ctx, detailID)
	if err != nil {
		return nil, err
	}
	d.LegacyResult = &result
	d.Observations = observations

	var transition stateTransition
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateDetail(ctx, d); err != nil {
			return err
		}
		transition, err = s.recompute(ctx, detailID, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(ctx, transition)
	return s.repo.GetDetail(ctx, detailID)
}

// ResetDetailState is the administrative override that moves a detail back to
// an earlier workflow state. The reset is logged with the acting user; the
// request state is re-derived from the details as usual.
func (s *Service) ResetDetailState(ctx context.Context, detailID uuid.UUID, state, actor string) error {
	if !validState(state) {
		return fmt.Errorf("invalid state %q: %w", state, apperror.ErrValidation)
	}
	d, err := s.repo.GetDetail(ctx, detailID)
	if err != nil {
		return err
	}
	if stateRank(state) >= stateRank(d.State) {
		return fmt.Errorf("reset must move to an earlier state (current %s): %w", d.State, apperror.ErrValidation)
	}

	s.logger.Info().
		Str("detail_id", detailID.String()).
		Str("from", d.State).
		Str("to", state).
		Str("actor", actor).
		Msg("administrative state reset")

	return s.inTx(ctx, func(ctx context.Context) error {
		d.State = state
		d.ResultDate = nil
		d.RecordedBy = nil
		if err := s.repo.UpdateDetail(ctx, d); err != nil {
			return err
		}

		details, err := s.repo.ListDetails(ctx, d.RequestID)
		if err != nil {
			return err
		}
		states := make([]string, len(details))
		for i, dd := range details {
			states[i] = dd.State
		}
		return s.repo.UpdateRequestState(ctx, d.RequestID, EvaluateRequestState(states))
	})
}
