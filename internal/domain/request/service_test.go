package request

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/catalog"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/domain/patient"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/apperror"
	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/notification"
)

// --- mocks ---

type mockRepo struct {
	requests map[uuid.UUID]*Request
	details  map[uuid.UUID]*RequestDetail
	values   map[uuid.UUID]*ResultValue
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		requests: make(map[uuid.UUID]*Request),
		details:  make(map[uuid.UUID]*RequestDetail),
		values:   make(map[uuid.UUID]*ResultValue),
	}
}

func (m *mockRepo) CreateRequest(_ context.Context, req *Request) error {
	req.ID = uuid.New()
	cp := *req
	cp.Details = nil
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockRepo) GetRequest(_ context.Context, id uuid.UUID) (*Request, error) {
	q, ok := m.requests[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepo) SearchRequests(_ context.Context, _ map[string]string, _, _ int) ([]*Request, int, error) {
	var out []*Request
	for _, q := range m.requests {
		cp := *q
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateRequest(_ context.Context, req *Request) error {
	cur, ok := m.requests[req.ID]
	if !ok {
		return apperror.ErrNotFound
	}
	cp := *req
	cp.State = cur.State
	cp.Details = nil
	m.requests[req.ID] = &cp
	return nil
}

func (m *mockRepo) UpdateRequestState(_ context.Context, id uuid.UUID, state string) error {
	q, ok := m.requests[id]
	if !ok {
		return apperror.ErrNotFound
	}
	q.State = state
	return nil
}

func (m *mockRepo) DeleteRequest(_ context.Context, id uuid.UUID) error {
	delete(m.requests, id)
	return nil
}

func (m *mockRepo) CreateDetail(_ context.Context, d *RequestDetail) error {
	d.ID = uuid.New()
	cp := *d
	cp.Values = nil
	m.details[d.ID] = &cp
	return nil
}

func (m *mockRepo) GetDetail(_ context.Context, id uuid.UUID) (*RequestDetail, error) {
	d, ok := m.details[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) ListDetails(_ context.Context, requestID uuid.UUID) ([]*RequestDetail, error) {
	var out []*RequestDetail
	for _, d := range m.details {
		if d.RequestID == requestID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateDetail(_ context.Context, d *RequestDetail) error {
	cp := *d
	cp.Values = nil
	m.details[d.ID] = &cp
	return nil
}

func (m *mockRepo) UpsertValue(_ context.Context, v *ResultValue) error {
	for _, existing := range m.values {
		if existing.DetailID == v.DetailID && existing.FieldID == v.FieldID {
			existing.Value = v.Value
			existing.Observation = v.Observation
			existing.OutOfRange = v.OutOfRange
			v.ID = existing.ID
			return nil
		}
	}
	v.ID = uuid.New()
	cp := *v
	m.values[v.ID] = &cp
	return nil
}

func (m *mockRepo) ListValues(_ context.Context, detailID uuid.UUID) ([]*ResultValue, error) {
	var out []*ResultValue
	for _, v := range m.values {
		if v.DetailID == detailID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockCatalog struct {
	exams    map[uuid.UUID]*catalog.Exam
	fields   map[uuid.UUID]*catalog.FieldDefinition
	children map[uuid.UUID][]uuid.UUID
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		exams:    make(map[uuid.UUID]*catalog.Exam),
		fields:   make(map[uuid.UUID]*catalog.FieldDefinition),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockCatalog) GetExam(_ context.Context, id uuid.UUID) (*catalog.Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockCatalog) GetField(_ context.Context, id uuid.UUID) (*catalog.FieldDefinition, error) {
	f, ok := m.fields[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockCatalog) ResolveAllFields(ctx context.Context, examID uuid.UUID) ([]catalog.ResolvedField, error) {
	exam, err := m.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	var out []catalog.ResolvedField
	appendFields := func(e *catalog.Exam, namespace string) {
		for _, f := range m.fields {
			if f.ExamID == e.ID && f.Active {
				out = append(out, catalog.ResolvedField{
					FieldDefinition: *f,
					SourceExamID:    e.ID,
					SourceExamName:  e.Name,
					Namespace:       namespace,
				})
			}
		}
	}
	if exam.Kind != catalog.KindComposite {
		appendFields(exam, "")
	}
	for _, childID := range m.children[examID] {
		child, err := m.GetExam(ctx, childID)
		if err != nil {
			return nil, err
		}
		appendFields(child, child.Name)
	}
	return out, nil
}

func (m *mockCatalog) addExam(kind string) *catalog.Exam {
	e := &catalog.Exam{ID: uuid.New(), Code: uuid.NewString()[:6], Name: "Examen", Kind: kind, Active: true}
	m.exams[e.ID] = e
	return e
}

func (m *mockCatalog) addField(examID uuid.UUID, name, ftype string, required bool, refRange *string) *catalog.FieldDefinition {
	f := &catalog.FieldDefinition{
		ID: uuid.New(), ExamID: examID, Name: name, Type: ftype,
		Required: required, Active: true, Version: 1, ReferenceRange: refRange,
	}
	m.fields[f.ID] = f
	return f
}

type mockPatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return p, nil
}

type mockEvents struct {
	events []notification.Event
}

func (m *mockEvents) Publish(_ context.Context, evt notification.Event) {
	m.events = append(m.events, evt)
}

func (m *mockEvents) ofType(t string) []notification.Event {
	var out []notification.Event
	for _, e := range m.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// --- fixture ---

type fixture struct {
	repo    *mockRepo
	catalog *mockCatalog
	events  *mockEvents
	svc     *Service
	patient *patient.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMockRepo()
	cat := newMockCatalog()
	events := &mockEvents{}
	p := &patient.Patient{ID: uuid.New(), DocumentType: patient.DocDNI, DocumentNum: "12345678",
		FirstName: "Maria", PaternalName: "Quispe", Active: true}
	patients := &mockPatients{patients: map[uuid.UUID]*patient.Patient{p.ID: p}}
	svc := NewService(repo, cat, patients, events, nil, zerolog.Nop())
	return &fixture{repo: repo, catalog: cat, events: events, svc: svc, patient: p}
}

func (f *fixture) createRequest(t *testing.T, examIDs ...uuid.UUID) *Request {
	t.Helper()
	req := &Request{PatientID: f.patient.ID}
	if err := f.svc.Create(context.Background(), req, examIDs); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return req
}

func strPtr(s string) *string { return &s }

// --- tests ---

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	exam := f.catalog.addExam(catalog.KindSimple)

	req := f.createRequest(t, exam.ID)
	if req.State != StatePending {
		t.Errorf("request state = %s", req.State)
	}
	if len(req.Details) != 1 || req.Details[0].State != StatePending {
		t.Errorf("details = %+v", req.Details)
	}
	got := f.events.ofType(notification.EventRequestCreated)
	if len(got) != 1 {
		t.Fatalf("created events = %d", len(got))
	}
	evt := got[0]
	if evt.RequestID != req.ID.String() {
		t.Errorf("event request id = %q", evt.RequestID)
	}
	if evt.PatientID != f.patient.ID.String() {
		t.Errorf("event patient id = %q", evt.PatientID)
	}
	if len(evt.ExamIDs) != 1 || evt.ExamIDs[0] != exam.ID.String() {
		t.Errorf("event exam ids = %v", evt.ExamIDs)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t)
	exam := f.catalog.addExam(catalog.KindSimple)
	ctx := context.Background()

	err := f.svc.Create(ctx, &Request{PatientID: f.patient.ID}, nil)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("no exams: got %v", err)
	}

	err = f.svc.Create(ctx, &Request{PatientID: uuid.New()}, []uuid.UUID{exam.ID})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown patient: got %v", err)
	}

	err = f.svc.Create(ctx, &Request{PatientID: f.patient.ID}, []uuid.UUID{exam.ID, exam.ID})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("duplicate exam: got %v", err)
	}

	inactive := f.catalog.addExam(catalog.KindSimple)
	inactive.Active = false
	err = f.svc.Create(ctx, &Request{PatientID: f.patient.ID}, []uuid.UUID{inactive.ID})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("inactive exam: got %v", err)
	}
}

// Hemograma: three required numeric fields entered one by one. The detail
// walks pendiente -> en_proceso -> completado and the request completes with
// exactly one completion event.
func TestHemogramaCompletionFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	hb := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, strPtr("12-16"))
	hto := f.catalog.addField(exam.ID, "Hematocrito", catalog.FieldNumber, true, strPtr("36-46"))
	leu := f.catalog.addField(exam.ID, "Leucocitos", catalog.FieldNumber, true, strPtr("4000-11000"))

	req := f.createRequest(t, exam.ID)
	detail := req.Details[0]

	value, warning, err := f.svc.RecordValue(ctx, detail.ID, hb.ID, "10.2", nil, "tec. Rojas")
	if err != nil {
		t.Fatalf("first value: %v", err)
	}
	if warning != "" {
		t.Errorf("unexpected warning %q", warning)
	}
	if !value.OutOfRange {
		t.Error("10.2 against 12-16 not flagged out of range")
	}
	d, _ := f.repo.GetDetail(ctx, detail.ID)
	if d.State != StateInProgress {
		t.Errorf("after 1 of 3: detail %s", d.State)
	}
	r, _ := f.repo.GetRequest(ctx, req.ID)
	if r.State != StateInProgress {
		t.Errorf("after 1 of 3: request %s", r.State)
	}

	if _, _, err := f.svc.RecordValue(ctx, detail.ID, hto.ID, "41", nil, "tec. Rojas"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := f.svc.RecordValue(ctx, detail.ID, leu.ID, "8000", nil, "tec. Rojas"); err != nil {
		t.Fatal(err)
	}

	d, _ = f.repo.GetDetail(ctx, detail.ID)
	if d.State != StateCompleted {
		t.Fatalf("detail state = %s", d.State)
	}
	if d.ResultDate == nil {
		t.Error("fecha_resultado not stamped")
	}
	if d.RecordedBy == nil || *d.RecordedBy != "tec. Rojas" {
		t.Errorf("registrado_por = %v", d.RecordedBy)
	}
	r, _ = f.repo.GetRequest(ctx, req.ID)
	if r.State != StateCompleted {
		t.Errorf("request state = %s", r.State)
	}
	completed := f.events.ofType(notification.EventRequestCompleted)
	if len(completed) != 1 {
		t.Fatalf("completion events = %d, want 1", len(completed))
	}
	if completed[0].PatientID != f.patient.ID.String() {
		t.Errorf("completion event patient id = %q", completed[0].PatientID)
	}
	if len(completed[0].ExamIDs) != 1 {
		t.Errorf("completion event exam ids = %v", completed[0].ExamIDs)
	}
}

func TestRecordValueUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	hb := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, strPtr("12-16"))
	req := f.createRequest(t, exam.ID)
	detail := req.Details[0]

	if _, _, err := f.svc.RecordValue(ctx, detail.ID, hb.ID, "10", nil, "a"); err != nil {
		t.Fatal(err)
	}
	v2, _, err := f.svc.RecordValue(ctx, detail.ID, hb.ID, "14", nil, "a")
	if err != nil {
		t.Fatal(err)
	}
	if v2.OutOfRange {
		t.Error("14 within 12-16 flagged")
	}

	values, _ := f.repo.ListValues(ctx, detail.ID)
	if len(values) != 1 {
		t.Fatalf("values = %d, want 1 after upsert", len(values))
	}
	if values[0].Value != "14" {
		t.Errorf("value = %q", values[0].Value)
	}
}

func TestRecordValueFieldMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	other := f.catalog.addExam(catalog.KindSimple)
	foreign := f.catalog.addField(other.ID, "Glucosa", catalog.FieldNumber, true, nil)

	req := f.createRequest(t, exam.ID)
	_, _, err := f.svc.RecordValue(ctx, req.Details[0].ID, foreign.ID, "90", nil, "a")
	if !errors.Is(err, apperror.ErrFieldMismatch) {
		t.Errorf("expected ErrFieldMismatch, got %v", err)
	}
}

func TestRecordValueChildFieldAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.catalog.addExam(catalog.KindComposite)
	child := f.catalog.addExam(catalog.KindSimple)
	f.catalog.children[parent.ID] = []uuid.UUID{child.ID}
	childField := f.catalog.addField(child.ID, "Hemoglobina", catalog.FieldNumber, true, nil)

	req := f.createRequest(t, parent.ID)
	if _, _, err := f.svc.RecordValue(ctx, req.Details[0].ID, childField.ID, "13", nil, "a"); err != nil {
		t.Fatalf("child field rejected: %v", err)
	}
}

func TestRecordValueTypeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	num := f.catalog.addField(exam.ID, "Glucosa", catalog.FieldNumber, false, nil)
	sel := &catalog.FieldDefinition{ID: uuid.New(), ExamID: exam.ID, Name: "Grupo",
		Type: catalog.FieldSelect, Options: []string{"A", "B", "O"}, Active: true, Version: 1}
	f.catalog.fields[sel.ID] = sel
	boolean := f.catalog.addField(exam.ID, "Reactivo", catalog.FieldBoolean, false, nil)

	req := f.createRequest(t, exam.ID)
	detail := req.Details[0]

	if _, _, err := f.svc.RecordValue(ctx, detail.ID, num.ID, "abc", nil, "a"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("bad number: got %v", err)
	}
	if _, _, err := f.svc.RecordValue(ctx, detail.ID, sel.ID, "Z", nil, "a"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("bad option: got %v", err)
	}
	v, _, err := f.svc.RecordValue(ctx, detail.ID, boolean.ID, "Positivo", nil, "a")
	if err != nil {
		t.Fatalf("boolean coercion: %v", err)
	}
	if v.Value != "true" {
		t.Errorf("boolean normalized to %q", v.Value)
	}
	v, _, err = f.svc.RecordValue(ctx, detail.ID, num.ID, "8,5", nil, "a")
	if err != nil {
		t.Fatalf("comma decimal: %v", err)
	}
	if v.Value != "8.5" {
		t.Errorf("number normalized to %q", v.Value)
	}
}

func TestRecordValueUnparsableRangeWarns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	field := f.catalog.addField(exam.ID, "Urea", catalog.FieldNumber, true, strPtr("segun edad"))
	req := f.createRequest(t, exam.ID)

	value, warning, err := f.svc.RecordValue(ctx, req.Details[0].ID, field.ID, "35", nil, "a")
	if err != nil {
		t.Fatalf("value rejected on bad range: %v", err)
	}
	if warning == "" {
		t.Error("expected a range warning")
	}
	if value.OutOfRange {
		t.Error("unevaluable range must not flag the value")
	}
}

func TestRecordValueBooleanOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	field := f.catalog.addField(exam.ID, "VDRL", catalog.FieldBoolean, true, strPtr("negativo"))
	req := f.createRequest(t, exam.ID)

	value, warning, err := f.svc.RecordValue(ctx, req.Details[0].ID, field.ID, "Positivo", nil, "a")
	if err != nil {
		t.Fatalf("RecordValue: %v", err)
	}
	if warning != "" {
		t.Errorf("unexpected warning %q", warning)
	}
	if value.Value != "true" {
		t.Errorf("stored value = %q", value.Value)
	}
	if !value.OutOfRange {
		t.Error("positive result against a negative reference range must be flagged")
	}

	value, _, err = f.svc.RecordValue(ctx, req.Details[0].ID, field.ID, "No reactivo", nil, "a")
	if err != nil {
		t.Fatalf("RecordValue: %v", err)
	}
	if value.OutOfRange {
		t.Error("negative result matching the reference range must not be flagged")
	}
}

// A reference range edit on a field with values creates version 2. The old
// value stays tied to version 1; completion is judged against the new
// definition.
func TestFieldVersionBumpScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	v1 := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, strPtr("12-16"))

	req := f.createRequest(t, exam.ID)
	detail := req.Details[0]
	if _, _, err := f.svc.RecordValue(ctx, detail.ID, v1.ID, "13", nil, "a"); err != nil {
		t.Fatal(err)
	}
	d, _ := f.repo.GetDetail(ctx, detail.ID)
	if d.State != StateCompleted {
		t.Fatalf("detail = %s before version bump", d.State)
	}

	// Catalog versions the field: v1 deactivated, v2 active.
	v1.Active = false
	v2 := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, strPtr("11-15"))
	v2.Version = 2

	// Values can no longer land on the retired version.
	if _, _, err := f.svc.RecordValue(ctx, detail.ID, v1.ID, "14", nil, "a"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("deactivated field accepted: %v", err)
	}

	// Old value references v1 and does not satisfy v2; recording against v2
	// completes the detail again.
	v, _, err := f.svc.RecordValue(ctx, detail.ID, v2.ID, "14", nil, "a")
	if err != nil {
		t.Fatal(err)
	}
	if v.OutOfRange {
		t.Error("14 within 11-15 flagged")
	}
	d, _ = f.repo.GetDetail(ctx, detail.ID)
	if d.State != StateCompleted {
		t.Errorf("detail = %s after valuing v2", d.State)
	}

	values, _ := f.repo.ListValues(ctx, detail.ID)
	if len(values) != 2 {
		t.Errorf("values = %d, want one per field version", len(values))
	}
}

func TestSubmitValuesBatchOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	hb := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, strPtr("12-16"))
	hto := f.catalog.addField(exam.ID, "Hematocrito", catalog.FieldNumber, true, strPtr("36-46"))

	req := f.createRequest(t, exam.ID)
	detail := req.Details[0]

	outcomes, err := f.svc.SubmitValues(ctx, detail.ID, []ValueInput{
		{FieldID: hb.ID, Value: "13"},
		{FieldID: hto.ID, Value: "no aplica"},
		{FieldID: uuid.New(), Value: "1"},
	}, "tec. Rojas")
	if err != nil {
		t.Fatalf("SubmitValues: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d", len(outcomes))
	}
	if !outcomes[0].Saved || outcomes[0].Error != "" {
		t.Errorf("outcome[0] = %+v", outcomes[0])
	}
	if outcomes[1].Saved || outcomes[1].Error == "" {
		t.Errorf("outcome[1] = %+v", outcomes[1])
	}
	if outcomes[2].Saved || outcomes[2].Error == "" {
		t.Errorf("outcome[2] = %+v", outcomes[2])
	}

	d, _ := f.repo.GetDetail(ctx, detail.ID)
	if d.State != StateInProgress {
		t.Errorf("detail state = %s, want en_proceso with 1 of 2 required", d.State)
	}
}

func TestRecordLegacyResultCompletesFieldlessExam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	req := f.createRequest(t, exam.ID)

	d, err := f.svc.RecordLegacyResult(ctx, req.Details[0].ID, "No se observan parasitos", nil, "tec. Rojas")
	if err != nil {
		t.Fatalf("RecordLegacyResult: %v", err)
	}
	if d.State != StateCompleted {
		t.Errorf("detail state = %s", d.State)
	}
	r, _ := f.repo.GetRequest(ctx, req.ID)
	if r.State != StateCompleted {
		t.Errorf("request state = %s", r.State)
	}
}

func TestResetDetailState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	hb := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, nil)
	req := f.createRequest(t, exam.ID)
	detail := req.Details[0]

	if _, _, err := f.svc.RecordValue(ctx, detail.ID, hb.ID, "13", nil, "a"); err != nil {
		t.Fatal(err)
	}
	d, _ := f.repo.GetDetail(ctx, detail.ID)
	if d.State != StateCompleted {
		t.Fatalf("precondition: detail %s", d.State)
	}

	// Forward "resets" are rejected.
	if err := f.svc.ResetDetailState(ctx, detail.ID, StateCompleted, "admin"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("same-state reset: got %v", err)
	}

	if err := f.svc.ResetDetailState(ctx, detail.ID, StatePending, "admin"); err != nil {
		t.Fatalf("ResetDetailState: %v", err)
	}
	d, _ = f.repo.GetDetail(ctx, detail.ID)
	if d.State != StatePending {
		t.Errorf("detail = %s", d.State)
	}
	if d.ResultDate != nil || d.RecordedBy != nil {
		t.Error("completion stamps not cleared")
	}
	r, _ := f.repo.GetRequest(ctx, req.ID)
	if r.State != StatePending {
		t.Errorf("request = %s", r.State)
	}
}

func TestDeleteRequestOnlyPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	exam := f.catalog.addExam(catalog.KindSimple)
	hb := f.catalog.addField(exam.ID, "Hemoglobina", catalog.FieldNumber, true, nil)
	req := f.createRequest(t, exam.ID)

	if _, _, err := f.svc.RecordValue(ctx, req.Details[0].ID, hb.ID, "13", nil, "a"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, req.ID); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("worked request deleted: %v", err)
	}

	fresh := f.createRequest(t, exam.ID)
	if err := f.svc.Delete(ctx, fresh.ID); err != nil {
		t.Errorf("pending request delete failed: %v", err)
	}
}
