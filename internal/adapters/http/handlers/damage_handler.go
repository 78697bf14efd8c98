package handlers

import (
	"errors"

	"lablink-inventory/internal/core/services"
	"lablink-inventory/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DamageHandler handles damage report endpoints
type DamageHandler struct {
	damageService *services.DamageService
}

// NewDamageHandler creates a new damage handler
func NewDamageHandler(damageService *services.DamageService) *DamageHandler {
	return &DamageHandler{damageService: damageService}
}

// ReportDamageRequest represents damage report request body
type ReportDamageRequest struct {
	ItemID      uint   `json:"item_id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ResolveDamageRequest represents resolution request body
type ResolveDamageRequest struct {
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes"`
}

// ReportDamage handles damage report submission
// @Summary Report damage
// @Description File a damage report for an item
// @Tags Damage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReportDamageRequest true "Damage data"
// @Success 201 {object} response.Response
// @Router /damage [post]
func (h *DamageHandler) ReportDamage(c *fiber.Ctx) error {
	reporterID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ReportDamageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ItemID == 0 || req.Description == "" {
		return response.BadRequest(c, "Item and description are required")
	}

	report, err := h.damageService.Report(c.Context(), reporterID, &services.ReportDamageInput{
		ItemID:      req.ItemID,
		Severity:    req.Severity,
		Description: req.Description,
	}, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSeverity):
			return response.BadRequest(c, "Invalid severity")
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is archived")
		default:
			return response.InternalServerError(c, "Failed to report damage")
		}
	}

	return response.Created(c, "Damage reported", report)
}

// ListReports handles damage report listing. Students see their own.
// @Summary List damage reports
// @Description List damage reports with filters
// @Tags Damage
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Param severity query string false "Severity filter"
// @Success 200 {object} response.Response
// @Router /damage [get]
func (h *DamageHandler) ListReports(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	input := &services.ListDamageInput{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 20),
		Status:   c.Query("status"),
		Severity: c.Query("severity"),
	}
	if itemID := c.QueryInt("item_id", 0); itemID > 0 {
		id := uint(itemID)
		input.ItemID = &id
	}
	if !callerRole(c).CanWorkMaintenance() {
		input.ReporterID = &userID
	}

	result, err := h.damageService.ListReports(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list damage reports")
	}

	return response.Success(c, "Damage reports retrieved successfully", result)
}

// GetReport handles fetching one damage report
// @Summary Get damage report
// @Description Get a damage report by ID
// @Tags Damage
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /damage/{id} [get]
func (h *DamageHandler) GetReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid report ID")
	}

	report, err := h.damageService.GetReport(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrDamageNotFound) {
			return response.NotFound(c, "Damage report not found")
		}
		return response.InternalServerError(c, "Failed to get damage report")
	}

	return response.Success(c, "Damage report retrieved successfully", report)
}

// StartReview handles moving a report into triage
// @Summary Start damage review
// @Description Move a pending report into review (technician, staff or admin)
// @Tags Damage
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Router /damage/{id}/review [put]
func (h *DamageHandler) StartReview(c *fiber.Ctx) error {
	reviewerID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid report ID")
	}

	report, err := h.damageService.StartReview(c.Context(), reviewerID, uint(id), c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDamageNotFound):
			return response.NotFound(c, "Damage report not found")
		case errors.Is(err, services.ErrDamageNotOpen):
			return response.Conflict(c, "Damage report is not pending")
		default:
			return response.InternalServerError(c, "Failed to start review")
		}
	}

	return response.Success(c, "Review started", report)
}

// Resolve handles damage report resolution
// @Summary Resolve damage report
// @Description Close an open report as resolved, rejected or maintenance_scheduled (technician, staff or admin)
// @Tags Damage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param body body ResolveDamageRequest true "Resolution"
// @Success 200 {object} response.Response
// @Router /damage/{id}/resolve [put]
func (h *DamageHandler) Resolve(c *fiber.Ctx) error {
	resolverID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid report ID")
	}

	var req ResolveDamageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	report, err := h.damageService.Resolve(c.Context(), resolverID, uint(id), &services.ResolveDamageInput{
		Status:          req.Status,
		ResolutionNotes: req.ResolutionNotes,
	}, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidResolution):
			return response.BadRequest(c, "Invalid resolution status")
		case errors.Is(err, services.ErrResolutionRequired):
			return response.BadRequest(c, "Resolution notes are required")
		case errors.Is(err, services.ErrDamageNotFound):
			return response.NotFound(c, "Damage report not found")
		case errors.Is(err, services.ErrDamageNotOpen):
			return response.Conflict(c, "Damage report is already closed")
		default:
			return response.InternalServerError(c, "Failed to resolve damage report")
		}
	}

	return response.Success(c, "Damage report resolved", report)
}
