package handlers

import (
	"errors"
	"time"

	"lablink-inventory/internal/core/services"
	"lablink-inventory/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ActivityHandler handles audit log and report export endpoints
type ActivityHandler struct {
	activityService *services.ActivityService
	reportService   *services.ReportService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(
	activityService *services.ActivityService,
	reportService *services.ReportService,
) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		reportService:   reportService,
	}
}

// ListActivities handles audit log listing
// @Summary List activity log
// @Description List audit entries, newest first (admin only)
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param action query string false "Action filter"
// @Param entity_type query string false "Entity type filter"
// @Param from query string false "Start of range (RFC3339)"
// @Param to query string false "End of range (RFC3339)"
// @Success 200 {object} response.Response
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *fiber.Ctx) error {
	input := &services.ListActivitiesInput{
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 20),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if userID := c.QueryInt("user_id", 0); userID > 0 {
		id := uint(userID)
		input.UserID = &id
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		input.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		input.To = &to
	}

	result, err := h.activityService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list activities")
	}

	return response.Success(c, "Activities retrieved successfully", result)
}

// ExportReport handles report export
// @Summary Export report
// @Description Export a report as CSV or XLSX (staff or admin)
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param type path string true "Report type" Enums(borrows, maintenance, damage, activity, users)
// @Param format query string false "Export format" Enums(csv, xlsx)
// @Param from query string false "Start of range (RFC3339, activity only)"
// @Param to query string false "End of range (RFC3339, activity only)"
// @Success 200 {file} binary
// @Router /reports/{type} [get]
func (h *ActivityHandler) ExportReport(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	reportType := c.Params("type")
	format := c.Query("format", services.FormatCSV)

	var from, to *time.Time
	if t, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		from = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		to = &t
	}

	result, err := h.reportService.Export(c.Context(), actorID, reportType, format, from, to, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownReportType):
			return response.BadRequest(c, "Unknown report type")
		case errors.Is(err, services.ErrUnknownFormat):
			return response.BadRequest(c, "Unknown export format")
		default:
			return response.InternalServerError(c, "Failed to export report")
		}
	}

	c.Set("Content-Type", result.ContentType)
	c.Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	return c.Send(result.Data)
}
