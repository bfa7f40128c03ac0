package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nrw-report-service/internal/confirmation"
	"nrw-report-service/internal/geo"
	"nrw-report-service/internal/http/middleware"
	"nrw-report-service/internal/model"
	"nrw-report-service/internal/realtime"
	"nrw-report-service/internal/service"
	"nrw-report-service/internal/staging"
)

const formSessionHeader = "X-Form-Session"

type Submitter interface {
	Submit(ctx context.Context, form model.ReportFormData) (*model.IncidentConfirmation, error)
}

type ReportStore interface {
	Snapshot() []model.Report
	Find(id uuid.UUID) (*model.Report, bool)
	Refresh(ctx context.Context) ([]model.Report, error)
}

type DetailActions interface {
	ToggleResolved(ctx context.Context, id uuid.UUID) (*model.Report, error)
	Delete(ctx context.Context, id uuid.UUID, confirmed bool) error
}

type Options struct {
	MaxUploadBytes int64
	Location       *time.Location
	Geolocation    geo.Options
	HealthCheck    func(ctx context.Context) error
}

type Handler struct {
	submitter Submitter
	store     ReportStore
	actions   DetailActions
	signer    *confirmation.Signer
	guard     *service.SubmissionGuard
	hub       *realtime.Hub
	opts      Options
	log       zerolog.Logger
}

func NewHandler(
	submitter Submitter,
	store ReportStore,
	actions DetailActions,
	signer *confirmation.Signer,
	hub *realtime.Hub,
	opts Options,
	log zerolog.Logger,
) *Handler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{
		submitter: submitter,
		store:     store,
		actions:   actions,
		signer:    signer,
		guard:     service.NewSubmissionGuard(),
		hub:       hub,
		opts:      opts,
		log:       log,
	}
}

func (h *Handler) healthz(c *gin.Context) {
	if h.opts.HealthCheck != nil {
		if err := h.opts.HealthCheck(c.Request.Context()); err != nil {
			h.log.Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listIssueTypes(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(gin.H{
		"items":   model.IssueTypeOptions(),
		"default": model.DefaultIssueType,
	}))
}

func (h *Handler) submitReport(c *gin.Context) {
	release, ok := h.guard.Acquire(strings.TrimSpace(c.GetHeader(formSessionHeader)))
	if !ok {
		c.JSON(http.StatusConflict, errorResponse(service.ErrSubmissionInFlight.Error()))
		return
	}
	defer release()

	form := model.NewReportFormData()
	form.FullName = c.PostForm("full_name")
	form.Phone = c.PostForm("phone")
	form.Email = c.PostForm("email")
	form.Description = c.PostForm("description")
	form.IssueType = model.ParseIssueType(c.PostForm("issue_type"))

	locator := geo.NewProvider(geo.FormLocator{
		Latitude:    c.PostForm("latitude"),
		Longitude:   c.PostForm("longitude"),
		DeviceError: c.PostForm("location_error"),
	}, h.opts.Geolocation)
	locator.RequestLocation(c.Request.Context())
	form.Latitude, form.Longitude = locator.Coordinates()

	image, err := h.stagedImage(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if image != nil {
		form.Image = image
	}

	conf, err := h.submitter.Submit(c.Request.Context(), form)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			body := gin.H{"error": "please correct the highlighted fields", "fields": verr.Fields}
			if snap := locator.Snapshot(); snap.Error != "" {
				body["location_error"] = snap.Error
			}
			c.JSON(http.StatusUnprocessableEntity, body)
			return
		}
		h.handleError(c, err)
		return
	}

	token, err := h.signer.Sign(*conf)
	if err != nil {
		h.log.Error().Err(err).Str("incident_id", conf.IncidentID).Msg("confirmation sign failed")
	}

	c.JSON(http.StatusCreated, successResponse(gin.H{
		"confirmation": conf,
		"token":        token,
	}))
}

func (h *Handler) previewImage(c *gin.Context) {
	stage := staging.New()
	image, err := h.readImage(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if image == nil {
		c.JSON(http.StatusBadRequest, errorResponse("image is required"))
		return
	}
	if err := stage.Select(*image); err != nil {
		h.handleError(c, err)
		return
	}

	preview, ok := stage.WaitPreview(c.Request.Context())
	if !ok {
		c.JSON(http.StatusServiceUnavailable, errorResponse("preview not ready, please try again"))
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"name":    image.Name,
		"size":    len(image.Data),
		"preview": preview,
	}))
}

func (h *Handler) getConfirmation(c *gin.Context) {
	conf, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("confirmation not found or expired"))
		return
	}
	c.JSON(http.StatusOK, successResponse(conf))
}

// stagedImage stages the uploaded photo so only a verified image reaches the
// submission.
func (h *Handler) stagedImage(c *gin.Context) (*model.ImageFile, error) {
	image, err := h.readImage(c)
	if err != nil || image == nil {
		return nil, err
	}
	stage := staging.New()
	if err := stage.Select(*image); err != nil {
		return nil, err
	}
	return stage.File(), nil
}

var (
	errImageTooLarge   = errors.New("image is too large")
	errImageUnreadable = errors.New("could not read the uploaded image, please try again")
)

func (h *Handler) readImage(c *gin.Context) (*model.ImageFile, error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		h.log.Warn().Err(err).Str("request_id", middleware.RequestID(c)).Msg("multipart image read failed")
		return nil, errImageUnreadable
	}
	if h.opts.MaxUploadBytes > 0 && header.Size > h.opts.MaxUploadBytes {
		return nil, errImageTooLarge
	}
	data, err := readFormFile(header)
	if err != nil {
		h.log.Warn().Err(err).Str("request_id", middleware.RequestID(c)).Msg("uploaded image read failed")
		return nil, errImageUnreadable
	}
	return &model.ImageFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, staging.ErrInvalidType):
		c.JSON(http.StatusBadRequest, errorResponse("please select an image file"))
	case errors.Is(err, errImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse(err.Error()))
	case errors.Is(err, errImageUnreadable):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse("report not found"))
	case errors.Is(err, service.ErrConfirmationRequired):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, errorResponse("failed to upload image, please try again"))
	case errors.Is(err, service.ErrSubmissionFailed):
		c.JSON(http.StatusBadGateway, errorResponse("failed to submit report, please try again"))
	case errors.Is(err, service.ErrPersistence):
		h.log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("report store error")
		c.JSON(http.StatusServiceUnavailable, errorResponse("reports are temporarily unavailable, please try again"))
	default:
		h.log.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
