package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestPDFOutput(t *testing.T) {
	var buf bytes.Buffer
	err := PDF(&buf, ResultReport{
		RequestID:   "r-1",
		PatientName: "Maria Quispe",
		PatientDoc:  "DNI 12345678",
		DoctorName:  "Dr. Soto",
		Date:        "2025-03-01",
		Sections: []ResultSection{{
			Title: "Hemograma",
			Rows: []ResultRow{
				{Field: "Hemoglobina", Value: "10.2", Unit: "g/dL", ReferenceRange: "12-16", OutOfRange: true},
				{Field: "Hematocrito", Value: "41", Unit: "%", ReferenceRange: "36-46"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output does not look like a PDF (first bytes %q)", buf.String()[:8])
	}
}

func TestExcelRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := Excel(&buf, Table{
		Sheet:   "Solicitudes",
		Headers: []string{"Fecha", "Paciente", "Estado"},
		Rows: [][]interface{}{
			{"2025-03-01", "Maria Quispe", "completado"},
			{"2025-03-02", "Jose Rojas", "pendiente"},
		},
	})
	if err != nil {
		t.Fatalf("Excel: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Solicitudes", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Maria Quispe" {
		t.Errorf("B2 = %q", got)
	}
	header, _ := f.GetCellValue("Solicitudes", "C1")
	if header != "Estado" {
		t.Errorf("C1 = %q", header)
	}
}
