package request

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)
	SearchRequests(ctx context.Context, params map[string]string, limit, offset int) ([]*Request, int, error)
	UpdateRequest(ctx context.Context, req *Request) error
	UpdateRequestState(ctx context.Context, id uuid.UUID, state string) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error

	CreateDetail(ctx context.Context, d *RequestDetail) error
	GetDetail(ctx context.Context, id uuid.UUID) (*RequestDetail, error)
	ListDetails(ctx context.Context, requestID uuid.UUID) ([]*RequestDetail, error)
	UpdateDetail(ctx context.Context, d *RequestDetail) error

	UpsertValue(ctx context.Context, v *ResultValue) error
	ListValues(ctx context.Context, detailID uuid.UUID) ([]*ResultValue, error)
}
