package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStatus is a display-only projection of Resolved. Only the boolean is
// persisted.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusInProgress ReportStatus = "in_progress"
	ReportStatusResolved   ReportStatus = "resolved"
)

type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name        *string   `gorm:"type:text" json:"name"`
	Phone       *string   `gorm:"type:text" json:"phone"`
	Email       *string   `gorm:"type:text" json:"email"`
	Description *string   `gorm:"type:text" json:"description"`
	IssueType   *string   `gorm:"type:text" json:"issue_type"`
	ImageURL    *string   `gorm:"type:text" json:"image_url"`
	ImagePath   *string   `gorm:"type:text" json:"image_path"`
	Latitude    *float64  `gorm:"type:double precision" json:"latitude"`
	Longitude   *float64  `gorm:"type:double precision" json:"longitude"`
	Resolved    bool      `gorm:"not null;default:false" json:"resolved"`
	CreatedAt   time.Time `gorm:"not null;default:now();autoCreateTime:false;<-:create" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r Report) Status() ReportStatus {
	if r.Resolved {
		return ReportStatusResolved
	}
	return ReportStatusPending
}

func (r Report) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// ReportColumns lists the persisted columns in table order. Exports and
// migrations rely on this order.
var ReportColumns = []string{
	"id",
	"name",
	"phone",
	"email",
	"description",
	"issue_type",
	"image_url",
	"image_path",
	"latitude",
	"longitude",
	"resolved",
	"created_at",
}
