package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nrw-report-service/internal/events"
	"nrw-report-service/internal/model"
	"nrw-report-service/internal/storage"
	"nrw-report-service/internal/validate"
)

const eventTimeout = 15 * time.Second

type SubmissionService struct {
	reports   ReportRepository
	storage   storage.ObjectStorage
	publisher events.Publisher
	log       zerolog.Logger

	now        func() time.Time
	incidentID func(time.Time) string
}

func NewSubmissionService(
	reports ReportRepository,
	objects storage.ObjectStorage,
	publisher events.Publisher,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		reports:    reports,
		storage:    objects,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
		incidentID: NewIncidentID,
	}
}

// Submit validates the form, uploads the staged image, inserts the report and
// returns the confirmation shown to the reporter. Nothing is retried. Callers
// must not run two submissions for the same form at once.
func (s *SubmissionService) Submit(ctx context.Context, form model.ReportFormData) (*model.IncidentConfirmation, error) {
	if errs := validate.Validate(form); !errs.Valid() {
		return nil, &ValidationError{Fields: errs}
	}

	now := s.now()

	var imageURL, imagePath *string
	if form.Image != nil {
		key := storage.BuildObjectKey(now, form.Image.Name, form.Image.Data)
		if err := s.storage.Upload(ctx, key, form.Image.ContentType, form.Image.Data); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("report image upload failed")
			return nil, ErrUploadFailed
		}
		url := s.storage.PublicURL(key)
		imageURL, imagePath = &url, &key
	}

	issueType := string(form.IssueType)
	report := &model.Report{
		Name:        optional(form.FullName),
		Phone:       optional(form.Phone),
		Email:       optional(form.Email),
		Description: optional(form.Description),
		IssueType:   &issueType,
		ImageURL:    imageURL,
		ImagePath:   imagePath,
		Latitude:    form.Latitude,
		Longitude:   form.Longitude,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		s.log.Error().Err(err).Msg("report insert failed")
		if imagePath != nil {
			s.log.Warn().Str("image_path", *imagePath).Msg("uploaded image left orphaned by failed insert")
		}
		return nil, ErrSubmissionFailed
	}

	s.log.Info().
		Str("report_id", report.ID.String()).
		Str("issue_type", issueType).
		Bool("has_image", imagePath != nil).
		Msg("report submitted")

	s.publish(events.RoutingKeyReportCreated, report)

	return &model.IncidentConfirmation{
		IncidentID: s.incidentID(now),
		Form:       form.Echo(),
	}, nil
}

func (s *SubmissionService) publish(routingKey string, report *model.Report) {
	publish(s.publisher, s.log, routingKey, report)
}

// publish hands the event to the broker in the background; a failure is
// logged and never reaches the caller.
func publish(publisher events.Publisher, log zerolog.Logger, routingKey string, report *model.Report) {
	if publisher == nil {
		return
	}
	event := events.ReportEvent{
		ReportID:  report.ID.String(),
		Resolved:  report.Resolved,
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		Timestamp: time.Now().Unix(),
	}
	if report.IssueType != nil {
		event.IssueType = *report.IssueType
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		if err := publisher.Publish(ctx, routingKey, event); err != nil {
			log.Warn().Err(err).Str("routing_key", routingKey).Str("report_id", event.ReportID).Msg("failed to publish report event")
		}
	}()
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
