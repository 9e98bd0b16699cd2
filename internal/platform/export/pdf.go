// Package export renders laboratory reports as PDF and Excel documents.
package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// ResultRow is one field line in a result report.
type ResultRow struct {
	Field          string
	Value          string
	Unit           string
	ReferenceRange string
	OutOfRange     bool
	Observation    string
}

// ResultSection groups rows under an exam heading.
type ResultSection struct {
	Title string
	Rows  []ResultRow
}

// ResultReport is the printable view of one completed request.
type ResultReport struct {
	LabName       string
	RequestID     string
	ReceiptNumber string
	PatientName   string
	PatientDoc    string
	DoctorName    string
	Date          string
	Sections      []ResultSection
}

// PDF writes the report as an A4 PDF document. Out-of-range values are
// printed in red with an asterisk.
func PDF(w io.Writer, report ResultReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	title := report.LabName
	if title == "" {
		title = "Laboratorio Clinico"
	}
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Informe de Resultados", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 9)
	header := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(35, 5, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, value, "", 1, "L", false, 0, "")
	}
	header("Paciente:", report.PatientName)
	header("Documento:", report.PatientDoc)
	header("Medico:", report.DoctorName)
	header("Fecha:", report.Date)
	if report.ReceiptNumber != "" {
		header("Recibo:", report.ReceiptNumber)
	}
	pdf.Ln(4)

	colWidths := []float64{60, 35, 20, 45, 30}
	for _, section := range report.Sections {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 7, section.Title, "1", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "B", 8)
		for i, h := range []string{"Campo", "Resultado", "Unidad", "Rango de Referencia", "Observacion"} {
			pdf.CellFormat(colWidths[i], 6, h, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		for _, row := range section.Rows {
			value := row.Value
			if row.OutOfRange {
				pdf.SetTextColor(200, 0, 0)
				value = value + " *"
			}
			pdf.CellFormat(colWidths[0], 6, row.Field, "1", 0, "L", false, 0, "")
			pdf.CellFormat(colWidths[1], 6, value, "1", 0, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(colWidths[2], 6, row.Unit, "1", 0, "L", false, 0, "")
			pdf.CellFormat(colWidths[3], 6, row.ReferenceRange, "1", 0, "L", false, 0, "")
			pdf.CellFormat(colWidths[4], 6, row.Observation, "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(0, 5, "(*) valor fuera del rango de referencia", "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
