// Package reporting serves aggregated laboratory statistics and request
// result exports (PDF and Excel). It reads across requests, patients, exams
// and field definitions with bulk queries instead of per-row lookups.
package reporting

import (
	"time"

	"github.com/google/uuid"
)

// StateCount is one slice of the requests-by-state aggregation.
type StateCount struct {
	State string `db:"state" json:"state"`
	Count int    `db:"count" json:"count"`
}

// ExamCount ranks exams by ordered volume.
type ExamCount struct {
	ExamID   uuid.UUID `db:"exam_id" json:"exam_id"`
	ExamName string    `db:"exam_name" json:"exam_name"`
	Count    int       `db:"count" json:"count"`
}

// DailyCount is one day of request volume.
type DailyCount struct {
	Day   time.Time `db:"day" json:"day"`
	Count int       `db:"count" json:"count"`
}

// Summary is the aggregation bundle for a date window.
type Summary struct {
	From     time.Time    `json:"from"`
	To       time.Time    `json:"to"`
	ByState  []StateCount `json:"by_state"`
	TopExams []ExamCount  `json:"top_exams"`
	Daily    []DailyCount `json:"daily"`
	Total    int          `json:"total"`
}

// ResultRow is one value joined to its field definition as recorded,
// including definitions that were deactivated since: historical rows keep the
// version they were entered against.
type ResultRow struct {
	DetailID       uuid.UUID `db:"detail_id" json:"detail_id"`
	ExamName       string    `db:"exam_name" json:"exam_name"`
	FieldName      string    `db:"field_name" json:"field_name"`
	FieldUnit      *string   `db:"field_unit" json:"field_unit,omitempty"`
	FieldRange     *string   `db:"field_range" json:"field_range,omitempty"`
	FieldVersion   int       `db:"field_version" json:"field_version"`
	FieldActive    bool      `db:"field_active" json:"field_active"`
	Value          string    `db:"value" json:"value"`
	OutOfRange     bool      `db:"out_of_range" json:"out_of_range"`
	Observation    *string   `db:"observation" json:"observation,omitempty"`
	LegacyResult   *string   `db:"legacy_result" json:"legacy_result,omitempty"`
}

// RequestReport is everything needed to print one request's results.
type RequestReport struct {
	RequestID     uuid.UUID  `json:"request_id"`
	Date          time.Time  `json:"date"`
	State         string     `json:"state"`
	ReceiptNumber *string    `json:"numero_recibo,omitempty"`
	PatientName   string     `json:"patient_name"`
	PatientDoc    string     `json:"patient_doc"`
	DoctorName    *string    `json:"doctor_name,omitempty"`
	Rows          []ResultRow `json:"rows"`
}

// RequestListRow is one line of the tabular request export.
type RequestListRow struct {
	RequestID   uuid.UUID `db:"request_id" json:"request_id"`
	Date        time.Time `db:"date" json:"date"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	PatientDoc  string    `db:"patient_doc" json:"patient_doc"`
	State       string    `db:"state" json:"state"`
	ExamCount   int       `db:"exam_count" json:"exam_count"`
	OutOfRange  int       `db:"out_of_range" json:"out_of_range"`
}
