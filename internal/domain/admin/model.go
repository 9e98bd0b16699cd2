// Package admin serves the dashboard counters and the catalog of hospital
// services a request can be ordered under.
package admin

import (
	"time"

	"github.com/google/uuid"
)

// Service maps to the servicio table (consultorios, emergencia, etc).
type Service struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Dashboard is the counters bundle for the landing page.
type Dashboard struct {
	RequestsToday     map[string]int `json:"requests_today"`
	RequestsThisMonth map[string]int `json:"requests_this_month"`
	PendingDetails    int            `json:"pending_details"`
	RecentCompletions int            `json:"recent_completions"`
	ActivePatients    int            `json:"active_patients"`
	ActiveExams       int            `json:"active_exams"`
}
