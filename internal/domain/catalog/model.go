// Package catalog manages the exam catalog: categories, exams (simple,
// composite and hybrid), exam composition, and versioned result field
// definitions.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Exam kinds.
const (
	KindSimple    = "simple"
	KindComposite = "composite"
	KindHybrid    = "hybrid"
)

// Field types.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldSelect   = "select"
	FieldBoolean  = "boolean"
	FieldTextarea = "textarea"
)

// ExamCategory maps to the categoria_examen table.
type ExamCategory struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Exam maps to the examen table.
type Exam struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	Kind       string    `db:"kind" json:"kind"`
	IsProfile  bool      `db:"is_profile" json:"is_profile"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ExamChild is one ordered composition edge (examen_hijo table).
type ExamChild struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ParentID uuid.UUID `db:"parent_id" json:"parent_id"`
	ChildID  uuid.UUID `db:"child_id" json:"child_id"`
	Position int       `db:"position" json:"position"`
	Active   bool      `db:"active" json:"active"`
}

// FieldDefinition maps to the campo_examen table. Once a field has recorded
// values it becomes immutable: edits create a new row with Version+1 and the
// old row is deactivated, so historical results keep pointing at the
// definition they were entered against.
type FieldDefinition struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ExamID             uuid.UUID  `db:"exam_id" json:"exam_id"`
	Name               string     `db:"name" json:"name"`
	Type               string     `db:"type" json:"type"`
	Unit               *string    `db:"unit" json:"unit,omitempty"`
	ReferenceRange     *string    `db:"reference_range" json:"reference_range,omitempty"`
	Options            []string   `db:"options" json:"options,omitempty"`
	Section            *string    `db:"section" json:"section,omitempty"`
	Position           int        `db:"position" json:"position"`
	Required           bool       `db:"required" json:"required"`
	Active             bool       `db:"active" json:"active"`
	Version            int        `db:"version" json:"version"`
	DeactivatedAt      *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
	DeactivationReason *string    `db:"deactivation_reason" json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// ResolvedField is a field in the full entry form of an exam. Fields that
// come from a composed child carry the child's name as Namespace so the form
// can group them.
type ResolvedField struct {
	FieldDefinition
	SourceExamID   uuid.UUID `json:"source_exam_id"`
	SourceExamName string    `json:"source_exam_name"`
	Namespace      string    `json:"namespace,omitempty"`
}

// FieldUpdate carries the editable attributes of a field definition.
type FieldUpdate struct {
	Name           *string   `json:"name,omitempty"`
	Type           *string   `json:"type,omitempty"`
	Unit           *string   `json:"unit,omitempty"`
	ReferenceRange *string   `json:"reference_range,omitempty"`
	Options        *[]string `json:"options,omitempty"`
	Section        *string   `json:"section,omitempty"`
	Position       *int      `json:"position,omitempty"`
	Required       *bool     `json:"required,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}

func validKind(k string) bool {
	return k == KindSimple || k == KindComposite || k == KindHybrid
}

func validFieldType(t string) bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldBoolean, FieldTextarea:
		return true
	}
	return false
}

// apply copies the non-nil attributes onto f.
func (u FieldUpdate) apply(f *FieldDefinition) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Type != nil {
		f.Type = *u.Type
	}
	if u.Unit != nil {
		f.Unit = u.Unit
	}
	if u.ReferenceRange != nil {
		f.ReferenceRange = u.ReferenceRange
	}
	if u.Options != nil {
		f.Options = *u.Options
	}
	if u.Section != nil {
		f.Section = u.Section
	}
	if u.Position != nil {
		f.Position = *u.Position
	}
	if u.Required != nil {
		f.Required = *u.Required
	}
}
