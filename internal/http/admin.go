package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nrw-report-service/internal/geo"
	"nrw-report-service/internal/model"
	"nrw-report-service/internal/service"
)

func (h *Handler) listReports(c *gin.Context) {
	state, err := parseDashboardQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	view, err := service.BuildDashboardView(h.store.Snapshot(), state, h.opts.Location)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) exportReports(c *gin.Context) {
	state, err := parseDashboardQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	reports, err := service.FilterReports(h.store.Snapshot(), state.Criteria, h.opts.Location)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filename := service.ExportFilename(time.Now())
	c.Header("Content-Type", service.ExportContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := service.ExportCSV(c.Writer, reports); err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("report export failed")
		return
	}
	h.log.Info().Int("rows", len(reports)).Str("filename", filename).Msg("reports exported")
}

func (h *Handler) reportMap(c *gin.Context) {
	state, err := parseDashboardQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resolution := geo.DefaultResolution
	if raw := strings.TrimSpace(c.Query("resolution")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("resolution must be a number"))
			return
		}
		resolution = v
	}

	reports, err := service.FilterReports(h.store.Snapshot(), state.Criteria, h.opts.Location)
	if err != nil {
		h.handleError(c, err)
		return
	}
	clusters, err := geo.ClusterReports(reports, resolution)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{
		"resolution": resolution,
		"items":      clusters,
	}))
}

func (h *Handler) streamReports(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := h.hub.Register()
	defer h.hub.Unregister(client)

	c.SSEvent("connected", gin.H{"count": len(h.store.Snapshot())})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			c.SSEvent(event.Type, event)
			c.Writer.Flush()
		}
	}
}

func (h *Handler) getReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	report, found := h.store.Find(id)
	if !found {
		h.handleError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, successResponse(reportDetail(*report)))
}

func (h *Handler) toggleResolved(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	report, err := h.actions.ToggleResolved(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(reportDetail(*report)))
}

func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.actions.Delete(c.Request.Context(), id, confirmed); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) refreshReports(c *gin.Context) {
	reports, err := h.store.Refresh(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"total": len(reports)}))
}

type reportDetailResponse struct {
	model.Report
	Status         model.ReportStatus `json:"status"`
	IssueTypeLabel string             `json:"issue_type_label"`
	HasLocation    bool               `json:"has_location"`
}

func reportDetail(r model.Report) reportDetailResponse {
	issueType := model.DefaultIssueType
	if r.IssueType != nil {
		issueType = model.ParseIssueType(*r.IssueType)
	}
	label := issueType.Label()
	if label == "" {
		label = string(issueType)
	}
	return reportDetailResponse{
		Report:         r,
		Status:         r.Status(),
		IssueTypeLabel: label,
		HasLocation:    r.HasLocation(),
	}
}

func reportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid report id"))
		return uuid.Nil, false
	}
	return id, true
}

func parseDashboardQuery(c *gin.Context) (service.DashboardState, error) {
	var state service.DashboardState

	state.Criteria.Query = c.Query("q")
	state.Criteria.FromDate = strings.TrimSpace(c.Query("from"))
	state.Criteria.ToDate = strings.TrimSpace(c.Query("to"))
	if raw := strings.TrimSpace(c.Query("unresolved")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return state, fmt.Errorf("%w: unresolved must be true or false", service.ErrInvalidInput)
		}
		state.Criteria.UnresolvedOnly = v
	}
	if raw := strings.TrimSpace(c.Query("selected")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return state, fmt.Errorf("%w: invalid selected id", service.ErrInvalidInput)
		}
		state.SelectedID = &id
	}
	return state, nil
}
