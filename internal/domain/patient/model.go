// Package patient manages patient records and the DNI registry lookup used
// for form autofill.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Document types accepted on registration.
const (
	DocDNI      = "dni"
	DocPassport = "pasaporte"
	DocForeign  = "carnet_extranjeria"
)

// Patient maps to the paciente table.
type Patient struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	DocumentType string     `db:"document_type" json:"document_type"`
	DocumentNum  string     `db:"document_num" json:"document_num"`
	FirstName    string     `db:"first_name" json:"first_name"`
	PaternalName string     `db:"paternal_name" json:"paternal_name"`
	MaternalName *string    `db:"maternal_name" json:"maternal_name,omitempty"`
	BirthDate    *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex          *string    `db:"sex" json:"sex,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Address      *string    `db:"address" json:"address,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName is the display name used on reports.
func (p *Patient) FullName() string {
	name := p.FirstName + " " + p.PaternalName
	if p.MaternalName != nil && *p.MaternalName != "" {
		name += " " + *p.MaternalName
	}
	return name
}

func validDocumentType(t string) bool {
	return t == DocDNI || t == DocPassport || t == DocForeign
}
