// Package request implements the laboratory order workflow: a solicitud with
// one detail per ordered exam, structured result values per detail, and the
// derived pendiente / en_proceso / completado states.
package request

import (
	"time"

	"github.com/google/uuid"
)

// Workflow states shared by requests and details.
const (
	StatePending    = "pendiente"
	StateInProgress = "en_proceso"
	StateCompleted  = "completado"
)

// Request maps to the solicitud table.
type Request struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	ServiceID     *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	Date          time.Time  `db:"date" json:"date"`
	RDR           bool       `db:"rdr" json:"rdr"`
	SIS           bool       `db:"sis" json:"sis"`
	Exonerated    bool       `db:"exonerated" json:"exonerated"`
	ReceiptNumber *string    `db:"numero_recibo" json:"numero_recibo,omitempty"`
	State         string     `db:"state" json:"state"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	Details []*RequestDetail `db:"-" json:"details,omitempty"`
}

// RequestDetail maps to the solicitud_detalle table. LegacyResult keeps the
// free-text resultado used before structured fields existed.
type RequestDetail struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RequestID    uuid.UUID  `db:"request_id" json:"request_id"`
	ExamID       uuid.UUID  `db:"exam_id" json:"exam_id"`
	State        string     `db:"state" json:"state"`
	LegacyResult *string    `db:"resultado" json:"resultado,omitempty"`
	Observations *string    `db:"observations" json:"observations,omitempty"`
	ResultDate   *time.Time `db:"fecha_resultado" json:"fecha_resultado,omitempty"`
	RecordedBy   *string    `db:"registrado_por" json:"registrado_por,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	Values []*ResultValue `db:"-" json:"values,omitempty"`
}

// ResultValue maps to the resultado_valor table. One row per (detail, field);
// re-entering a value updates the existing row.
type ResultValue struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DetailID    uuid.UUID `db:"detail_id" json:"detail_id"`
	FieldID     uuid.UUID `db:"field_id" json:"field_id"`
	Value       string    `db:"value" json:"value"`
	Observation *string   `db:"observation" json:"observation,omitempty"`
	OutOfRange  bool      `db:"out_of_range" json:"out_of_range"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValueInput is one submitted field value.
type ValueInput struct {
	FieldID     uuid.UUID `json:"field_id"`
	Value       string    `json:"value"`
	Observation *string   `json:"observation,omitempty"`
}

// ValueOutcome reports what happened to one submitted value.
type ValueOutcome struct {
	FieldID uuid.UUID `json:"field_id"`
	Saved   bool      `json:"saved"`
	Warning string    `json:"warning,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func validState(s string) bool {
	return s == StatePending || s == StateInProgress || s == StateCompleted
}

// stateRank orders states along the workflow.
func stateRank(s string) int {
	switch s {
	case StatePending:
		return 0
	case StateInProgress:
		return 1
	case StateCompleted:
		return 2
	}
	return -1
}
