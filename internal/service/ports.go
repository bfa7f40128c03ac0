package service

import (
	"context"

	"github.com/google/uuid"

	"nrw-report-service/internal/model"
)

// ReportRepository is the data store the services need. The GORM repository
// implements it.
type ReportRepository interface {
	List(ctx context.Context) ([]model.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Create(ctx context.Context, report *model.Report) error
	UpdateResolved(ctx context.Context, id uuid.UUID, resolved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Refresher re-reads the admin collection after a mutation.
type Refresher interface {
	Refresh(ctx context.Context) ([]model.Report, error)
}
