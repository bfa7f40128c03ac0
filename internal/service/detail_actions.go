package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"nrw-report-service/internal/events"
	"nrw-report-service/internal/model"
	"nrw-report-service/internal/storage"
)

// DetailActions are the mutations an administrator runs on a single report.
type DetailActions struct {
	reports   ReportRepository
	storage   storage.ObjectStorage
	store     Refresher
	publisher events.Publisher
	log       zerolog.Logger
}

func NewDetailActions(
	reports ReportRepository,
	objects storage.ObjectStorage,
	store Refresher,
	publisher events.Publisher,
	log zerolog.Logger,
) *DetailActions {
	return &DetailActions{
		reports:   reports,
		storage:   objects,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// ToggleResolved flips the resolved flag of the stored row and refreshes the
// admin collection.
func (a *DetailActions) ToggleResolved(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := a.reports.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	resolved := !report.Resolved
	if err := a.reports.UpdateResolved(ctx, id, resolved); err != nil {
		a.log.Error().Err(err).Str("report_id", id.String()).Msg("toggle resolved failed")
		return nil, mapRepoError(err)
	}
	report.Resolved = resolved

	a.log.Info().Str("report_id", id.String()).Bool("resolved", resolved).Msg("report resolution toggled")

	key := events.RoutingKeyReportReopened
	if resolved {
		key = events.RoutingKeyReportResolved
	}
	publish(a.publisher, a.log, key, report)
	a.refresh(ctx)

	return report, nil
}

// Delete removes the report row once the administrator has confirmed. The
// stored image is removed afterwards; a failure there is only logged.
func (a *DetailActions) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	report, err := a.reports.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}

	if err := a.reports.Delete(ctx, id); err != nil {
		a.log.Error().Err(err).Str("report_id", id.String()).Msg("report delete failed")
		return mapRepoError(err)
	}

	if report.ImagePath != nil && a.storage != nil {
		if err := a.storage.Remove(ctx, *report.ImagePath); err != nil {
			a.log.Warn().Err(err).Str("report_id", id.String()).Str("image_path", *report.ImagePath).Msg("report image remove failed")
		}
	}

	a.log.Info().Str("report_id", id.String()).Msg("report deleted")

	publish(a.publisher, a.log, events.RoutingKeyReportDeleted, report)
	a.refresh(ctx)

	return nil
}

func (a *DetailActions) refresh(ctx context.Context) {
	if a.store == nil {
		return
	}
	if _, err := a.store.Refresh(ctx); err != nil {
		a.log.Warn().Err(err).Msg("admin refresh after mutation failed")
	}
}

func mapRepoError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Join(ErrPersistence, err)
}
