package reporting

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LuisLavado/LaboratorioLaredo-third-sub000/internal/platform/export"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Summarize builds the aggregation bundle for the window.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	byState, err := s.repo.CountByState(ctx, from, to)
	if err != nil {
		return nil, err
	}
	topExams, err := s.repo.TopExams(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.DailyVolume(ctx, from, to)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, sc := range byState {
		total += sc.Count
	}
	return &Summary{From: from, To: to, ByState: byState, TopExams: topExams, Daily: daily, Total: total}, nil
}

func (s *Service) RequestReport(ctx context.Context, requestID uuid.UUID) (*RequestReport, error) {
	return s.repo.RequestReport(ctx, requestID)
}

// WriteRequestPDF renders one request's results as a PDF document.
func (s *Service) WriteRequestPDF(ctx context.Context, w io.Writer, requestID uuid.UUID) error {
	report, err := s.repo.RequestReport(ctx, requestID)
	if err != nil {
		return err
	}

	doc := export.ResultReport{
		LabName:     "Laboratorio Clinico Laredo",
		RequestID:   report.RequestID.String(),
		PatientName: report.PatientName,
		PatientDoc:  report.PatientDoc,
		Date:        report.Date.Format("02/01/2006"),
	}
	if report.ReceiptNumber != nil {
		doc.ReceiptNumber = *report.ReceiptNumber
	}
	if report.DoctorName != nil {
		doc.DoctorName = *report.DoctorName
	}

	// Group rows per exam, preserving query order.
	var sections []export.ResultSection
	index := map[string]int{}
	for _, row := range report.Rows {
		i, ok := index[row.ExamName]
		if !ok {
			i = len(sections)
			index[row.ExamName] = i
			sections = append(sections, export.ResultSection{Title: row.ExamName})
		}
		out := export.ResultRow{
			Field:      row.FieldName,
			Value:      row.Value,
			OutOfRange: row.OutOfRange,
		}
		if row.FieldName == "" && row.LegacyResult != nil {
			out.Field = "Resultado"
			out.Value = *row.LegacyResult
		}
		if row.FieldUnit != nil {
			out.Unit = *row.FieldUnit
		}
		if row.FieldRange != nil {
			out.ReferenceRange = *row.FieldRange
		}
		if row.Observation != nil {
			out.Observation = *row.Observation
		}
		sections[i].Rows = append(sections[i].Rows, out)
	}
	doc.Sections = sections

	return export.PDF(w, doc)
}

// WriteRequestsExcel writes the tabular request listing for the window.
func (s *Service) WriteRequestsExcel(ctx context.Context, w io.Writer, from, to time.Time, state string) error {
	rows, err := s.repo.ListRequests(ctx, from, to, state)
	if err != nil {
		return err
	}

	table := export.Table{
		Sheet:   "Solicitudes",
		Headers: []string{"Fecha", "Paciente", "Documento", "Estado", "Examenes", "Valores fuera de rango"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []interface{}{
			r.Date.Format("02/01/2006"), r.PatientName, r.PatientDoc,
			r.State, r.ExamCount, r.OutOfRange,
		})
	}
	return export.Excel(w, table)
}
