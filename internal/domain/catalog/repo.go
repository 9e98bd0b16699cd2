package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Categories
	CreateCategory(ctx context.Context, cat *ExamCategory) error
	GetCategory(ctx context.Context, id uuid.UUID) (*ExamCategory, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]*ExamCategory, error)
	UpdateCategory(ctx context.Context, cat *ExamCategory) error

	// Exams
	CreateExam(ctx context.Context, exam *Exam) error
	GetExam(ctx context.Context, id uuid.UUID) (*Exam, error)
	GetExamByCode(ctx context.Context, code string) (*Exam, error)
	SearchExams(ctx context.Context, params map[string]string, limit, offset int) ([]*Exam, int, error)
	UpdateExam(ctx context.Context, exam *Exam) error
	ExamReferenced(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteExam(ctx context.Context, id uuid.UUID) error

	// Composition
	AddChild(ctx context.Context, edge *ExamChild) error
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*ExamChild, error)
	ListParentIDs(ctx context.Context, childID uuid.UUID) ([]uuid.UUID, error)
	RemoveChild(ctx context.Context, parentID, childID uuid.UUID) error

	// Fields
	CreateField(ctx context.Context, f *FieldDefinition) error
	GetField(ctx context.Context, id uuid.UUID) (*FieldDefinition, error)
	ListFields(ctx context.Context, examID uuid.UUID, activeOnly bool) ([]*FieldDefinition, error)
	UpdateField(ctx context.Context, f *FieldDefinition) error
	DeactivateField(ctx context.Context, id uuid.UUID, reason string) error
	FieldHasValues(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteField(ctx context.Context, id uuid.UUID) error
}
