package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nrw-report-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// List returns every report, newest first.
func (r *ReportRepository) List(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	if err := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) UpdateResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Update("resolved", resolved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Report{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
