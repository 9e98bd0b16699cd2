package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CountByState(ctx context.Context, from, to time.Time) ([]StateCount, error)
	TopExams(ctx context.Context, from, to time.Time, limit int) ([]ExamCount, error)
	DailyVolume(ctx context.Context, from, to time.Time) ([]DailyCount, error)
	RequestReport(ctx context.Context, requestID uuid.UUID) (*RequestReport, error)
	ListRequests(ctx context.Context, from, to time.Time, state string) ([]RequestListRow, error)
}
