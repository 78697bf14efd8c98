package handlers

import (
	"errors"
	"time"

	"lablink-inventory/internal/core/services"
	"lablink-inventory/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MaintenanceHandler handles maintenance ticket and rule endpoints
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
	predictiveService  *services.PredictiveService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(
	maintenanceService *services.MaintenanceService,
	predictiveService *services.PredictiveService,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		predictiveService:  predictiveService,
	}
}

// CreateTicketRequest represents ticket creation request body
type CreateTicketRequest struct {
	ItemID        uint       `json:"item_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	TechnicianID  *uint      `json:"technician_id"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}

// UpdateTicketRequest represents ticket update request body
type UpdateTicketRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Cost          *float64   `json:"cost"`
}

// TransitionRequest represents status transition request body
type TransitionRequest struct {
	Status string   `json:"status"`
	Cost   *float64 `json:"cost"`
}

// AssignRequest represents technician assignment request body
type AssignRequest struct {
	TechnicianID uint `json:"technician_id"`
}

// RuleRequest represents rule create/update request body
type RuleRequest struct {
	Name             string `json:"name"`
	ConditionType    string `json:"condition_type"`
	ThresholdValue   int    `json:"threshold_value"`
	CategoryID       *uint  `json:"category_id"`
	Priority         string `json:"priority"`
	AutoCreateTicket bool   `json:"auto_create_ticket"`
	IsActive         *bool  `json:"is_active"`
}

// CreateTicket handles maintenance ticket creation
// @Summary Create maintenance ticket
// @Description Open a maintenance ticket for an item (staff, technician or admin)
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTicketRequest true "Ticket data"
// @Success 201 {object} response.Response
// @Router /maintenance [post]
func (h *MaintenanceHandler) CreateTicket(c *fiber.Ctx) error {
	creatorID, _ := c.Locals("userID").(uint)

	var req CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ItemID == 0 || req.Title == "" {
		return response.BadRequest(c, "Item and title are required")
	}

	input := &services.CreateMaintenanceInput{
		ItemID:        req.ItemID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		TechnicianID:  req.TechnicianID,
		ScheduledDate: req.ScheduledDate,
	}

	rec, err := h.maintenanceService.CreateTicket(c.Context(), creatorID, input, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is archived")
		case errors.Is(err, services.ErrInvalidPriority):
			return response.BadRequest(c, "Invalid priority")
		case errors.Is(err, services.ErrTechnicianNotFound):
			return response.BadRequest(c, "Technician not found")
		default:
			return response.InternalServerError(c, "Failed to create ticket")
		}
	}

	return response.Created(c, "Maintenance ticket created", rec)
}

// ListTickets handles ticket listing
// @Summary List maintenance tickets
// @Description List maintenance tickets with filters
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Success 200 {object} response.Response
// @Router /maintenance [get]
func (h *MaintenanceHandler) ListTickets(c *fiber.Ctx) error {
	input := &services.ListMaintenanceInput{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 20),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if itemID := c.QueryInt("item_id", 0); itemID > 0 {
		id := uint(itemID)
		input.ItemID = &id
	}
	if techID := c.QueryInt("technician_id", 0); techID > 0 {
		id := uint(techID)
		input.TechnicianID = &id
	}

	result, err := h.maintenanceService.ListTickets(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list tickets")
	}

	return response.Success(c, "Tickets retrieved successfully", result)
}

// GetTicket handles fetching one ticket
// @Summary Get maintenance ticket
// @Description Get a maintenance ticket by ID
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/{id} [get]
func (h *MaintenanceHandler) GetTicket(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	rec, err := h.maintenanceService.GetTicket(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrMaintenanceNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		return response.InternalServerError(c, "Failed to get ticket")
	}

	return response.Success(c, "Ticket retrieved successfully", rec)
}

// UpdateTicket handles ticket metadata updates
// @Summary Update maintenance ticket
// @Description Update ticket metadata (staff, technician or admin)
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body UpdateTicketRequest true "Ticket data"
// @Success 200 {object} response.Response
// @Router /maintenance/{id} [put]
func (h *MaintenanceHandler) UpdateTicket(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateTicketInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		ScheduledDate: req.ScheduledDate,
		Cost:          req.Cost,
	}

	rec, err := h.maintenanceService.UpdateTicket(c.Context(), actorID, uint(id), input, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMaintenanceNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrMaintenanceCompleted):
			return response.Conflict(c, "Completed tickets cannot be modified")
		case errors.Is(err, services.ErrInvalidPriority):
			return response.BadRequest(c, "Invalid priority")
		default:
			return response.InternalServerError(c, "Failed to update ticket")
		}
	}

	return response.Success(c, "Ticket updated successfully", rec)
}

// Transition handles ticket status transitions
// @Summary Transition maintenance ticket
// @Description Move a ticket through its status workflow (technician or admin)
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body TransitionRequest true "Target status"
// @Success 200 {object} response.Response
// @Router /maintenance/{id}/status [put]
func (h *MaintenanceHandler) Transition(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	rec, err := h.maintenanceService.Transition(c.Context(), actorID, uint(id), req.Status, req.Cost, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMaintenanceNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.Conflict(c, "Illegal status transition")
		default:
			return response.InternalServerError(c, "Failed to transition ticket")
		}
	}

	return response.Success(c, "Ticket status updated", rec)
}

// AssignTechnician handles technician assignment
// @Summary Assign technician
// @Description Assign a technician to a ticket (staff or admin)
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body AssignRequest true "Technician"
// @Success 200 {object} response.Response
// @Router /maintenance/{id}/assign [put]
func (h *MaintenanceHandler) AssignTechnician(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.TechnicianID == 0 {
		return response.BadRequest(c, "Technician is required")
	}

	rec, err := h.maintenanceService.AssignTechnician(c.Context(), actorID, uint(id), req.TechnicianID, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMaintenanceNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, services.ErrMaintenanceCompleted):
			return response.Conflict(c, "Completed tickets cannot be reassigned")
		case errors.Is(err, services.ErrTechnicianNotFound):
			return response.BadRequest(c, "Technician not found")
		default:
			return response.InternalServerError(c, "Failed to assign technician")
		}
	}

	return response.Success(c, "Technician assigned", rec)
}

// ============================================================
// Predictive Rules
// ============================================================

// ListRules handles rule listing
// @Summary List maintenance rules
// @Description List all predictive maintenance rules (staff or admin)
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /rules [get]
func (h *MaintenanceHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.predictiveService.ListRules(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list rules")
	}
	return response.Success(c, "Rules retrieved successfully", rules)
}

// CreateRule handles rule creation
// @Summary Create maintenance rule
// @Description Create a predictive maintenance rule (admin only)
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RuleRequest true "Rule data"
// @Success 201 {object} response.Response
// @Router /rules [post]
func (h *MaintenanceHandler) CreateRule(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	var req RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.ConditionType == "" {
		return response.BadRequest(c, "Name and condition type are required")
	}

	rule, err := h.predictiveService.CreateRule(c.Context(), actorID, &services.RuleInput{
		Name:             req.Name,
		ConditionType:    req.ConditionType,
		ThresholdValue:   req.ThresholdValue,
		CategoryID:       req.CategoryID,
		Priority:         req.Priority,
		AutoCreateTicket: req.AutoCreateTicket,
		IsActive:         req.IsActive,
	}, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidConditionType):
			return response.BadRequest(c, "Invalid condition type")
		case errors.Is(err, services.ErrInvalidThreshold):
			return response.BadRequest(c, "Threshold must be positive")
		case errors.Is(err, services.ErrInvalidPriority):
			return response.BadRequest(c, "Invalid priority")
		default:
			return response.InternalServerError(c, "Failed to create rule")
		}
	}

	return response.Created(c, "Rule created successfully", rule)
}

// UpdateRule handles rule updates
// @Summary Update maintenance rule
// @Description Update a predictive maintenance rule (admin only)
// @Tags Rules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rule ID"
// @Param body body RuleRequest true "Rule data"
// @Success 200 {object} response.Response
// @Router /rules/{id} [put]
func (h *MaintenanceHandler) UpdateRule(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid rule ID")
	}

	var req RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	rule, err := h.predictiveService.UpdateRule(c.Context(), actorID, uint(id), &services.RuleInput{
		Name:             req.Name,
		ConditionType:    req.ConditionType,
		ThresholdValue:   req.ThresholdValue,
		CategoryID:       req.CategoryID,
		Priority:         req.Priority,
		AutoCreateTicket: req.AutoCreateTicket,
		IsActive:         req.IsActive,
	}, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRuleNotFound):
			return response.NotFound(c, "Rule not found")
		case errors.Is(err, services.ErrInvalidConditionType):
			return response.BadRequest(c, "Invalid condition type")
		case errors.Is(err, services.ErrInvalidThreshold):
			return response.BadRequest(c, "Threshold must be positive")
		case errors.Is(err, services.ErrInvalidPriority):
			return response.BadRequest(c, "Invalid priority")
		default:
			return response.InternalServerError(c, "Failed to update rule")
		}
	}

	return response.Success(c, "Rule updated successfully", rule)
}

// DeleteRule handles rule deletion
// @Summary Delete maintenance rule
// @Description Delete a predictive maintenance rule (admin only)
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rule ID"
// @Success 200 {object} response.Response
// @Router /rules/{id} [delete]
func (h *MaintenanceHandler) DeleteRule(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid rule ID")
	}

	if err := h.predictiveService.DeleteRule(c.Context(), actorID, uint(id), c.IP()); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			return response.NotFound(c, "Rule not found")
		}
		return response.InternalServerError(c, "Failed to delete rule")
	}

	return response.Success(c, "Rule deleted successfully", nil)
}

// EvaluateRules handles on-demand rule evaluation
// @Summary Evaluate maintenance rules
// @Description Run all active rules against the catalog and return flagged items (staff or admin)
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /rules/evaluate [post]
func (h *MaintenanceHandler) EvaluateRules(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	summary, err := h.predictiveService.Evaluate(c.Context(), actorID, c.IP())
	if err != nil {
		return response.InternalServerError(c, "Failed to evaluate rules")
	}

	return response.Success(c, "Rules evaluated", summary)
}

// ListSchedules handles schedule listing
// @Summary List maintenance schedules
// @Description List schedule entries produced by rule evaluations (staff or admin)
// @Tags Rules
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response
// @Router /schedules [get]
func (h *MaintenanceHandler) ListSchedules(c *fiber.Ctx) error {
	schedules, total, err := h.predictiveService.ListSchedules(c.Context(),
		c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return response.InternalServerError(c, "Failed to list schedules")
	}

	return response.Success(c, "Schedules retrieved successfully", fiber.Map{
		"schedules": schedules,
		"total":     total,
	})
}
