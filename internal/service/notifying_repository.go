package service

import (
	"context"

	"github.com/google/uuid"

	"nrw-report-service/internal/model"
	"nrw-report-service/internal/realtime"
)

// NotifyingRepository publishes a change to feed after every successful
// write. It stands in for the database trigger when the service runs with a
// LocalFeed.
func NotifyingRepository(reports ReportRepository, feed *realtime.LocalFeed) ReportRepository {
	return &notifyingRepository{ReportRepository: reports, feed: feed}
}

type notifyingRepository struct {
	ReportRepository
	feed *realtime.LocalFeed
}

func (r *notifyingRepository) Create(ctx context.Context, report *model.Report) error {
	if err := r.ReportRepository.Create(ctx, report); err != nil {
		return err
	}
	r.feed.Publish(realtime.Change{Op: realtime.OpInsert, ID: report.ID})
	return nil
}

func (r *notifyingRepository) UpdateResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	if err := r.ReportRepository.UpdateResolved(ctx, id, resolved); err != nil {
		return err
	}
	r.feed.Publish(realtime.Change{Op: realtime.OpUpdate, ID: id})
	return nil
}

func (r *notifyingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ReportRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.feed.Publish(realtime.Change{Op: realtime.OpDelete, ID: id})
	return nil
}
