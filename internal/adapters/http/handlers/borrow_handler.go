package handlers

import (
	"errors"
	"time"

	"lablink-inventory/internal/core/domain"
	"lablink-inventory/internal/core/services"
	"lablink-inventory/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowHandler handles borrow and return workflow endpoints
type BorrowHandler struct {
	borrowService *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// CreateBorrowRequest represents borrow creation request body
type CreateBorrowRequest struct {
	ItemID    uint      `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Purpose   string    `json:"purpose"`
	StartDate time.Time `json:"start_date"`
	DueDate   time.Time `json:"due_date"`
}

// RejectRequest represents a rejection request body
type RejectRequest struct {
	Reason string `json:"reason"`
}

// SubmitReturnRequest represents return submission request body
type SubmitReturnRequest struct {
	BorrowRequestID uint   `json:"borrow_request_id"`
	Quantity        int    `json:"quantity"`
	ItemCondition   string `json:"item_condition"`
	Notes           string `json:"notes"`
}

func callerRole(c *fiber.Ctx) domain.Role {
	role, _ := c.Locals("role").(string)
	return domain.Role(role)
}

// CreateBorrow handles borrow request submission
// @Summary Create borrow request
// @Description Submit a borrow request for an item
// @Tags Borrows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBorrowRequest true "Borrow data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /borrows [post]
func (h *BorrowHandler) CreateBorrow(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateBorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ItemID == 0 || req.Quantity == 0 {
		return response.BadRequest(c, "Item and quantity are required")
	}
	if req.StartDate.IsZero() || req.DueDate.IsZero() {
		return response.BadRequest(c, "Start date and due date are required")
	}

	input := &services.CreateBorrowInput{
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		Purpose:   req.Purpose,
		StartDate: req.StartDate,
		DueDate:   req.DueDate,
	}

	result, err := h.borrowService.CreateBorrow(c.Context(), userID, input, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is archived")
		case errors.Is(err, services.ErrItemNotBorrowable):
			return response.BadRequest(c, "Item is not borrowable")
		case errors.Is(err, services.ErrQuantityExceedsCap):
			return response.BadRequest(c, "Quantity exceeds the borrowable cap for this item")
		case errors.Is(err, services.ErrInsufficientStock):
			return response.BadRequest(c, "Not enough stock available")
		case errors.Is(err, services.ErrInvalidDateRange):
			return response.BadRequest(c, "Due date must be after start date")
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity must be positive")
		default:
			return response.InternalServerError(c, "Failed to create borrow request")
		}
	}

	return response.Created(c, "Borrow request submitted", result)
}

// ListBorrows handles borrow listing. Students see only their own.
// @Summary List borrow requests
// @Description List borrow requests with filters
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /borrows [get]
func (h *BorrowHandler) ListBorrows(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	input := &services.ListBorrowsInput{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
		Status: c.Query("status"),
	}
	if itemID := c.QueryInt("item_id", 0); itemID > 0 {
		id := uint(itemID)
		input.ItemID = &id
	}

	if callerRole(c).CanManageInventory() {
		if filterUser := c.QueryInt("user_id", 0); filterUser > 0 {
			id := uint(filterUser)
			input.UserID = &id
		}
	} else {
		input.UserID = &userID
	}

	result, err := h.borrowService.ListBorrows(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list borrow requests")
	}

	return response.Success(c, "Borrow requests retrieved successfully", result)
}

// GetBorrow handles fetching one borrow request
// @Summary Get borrow request
// @Description Get a borrow request by ID
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrows/{id} [get]
func (h *BorrowHandler) GetBorrow(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrow request ID")
	}

	result, err := h.borrowService.GetBorrow(c.Context(), uint(id), userID, callerRole(c).CanManageInventory())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrNotRequestOwner):
			return response.Forbidden(c, "You can only view your own requests")
		default:
			return response.InternalServerError(c, "Failed to get borrow request")
		}
	}

	return response.Success(c, "Borrow request retrieved successfully", result)
}

// ApproveBorrow handles borrow approval
// @Summary Approve borrow request
// @Description Approve a pending borrow request (staff or admin)
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow request ID"
// @Success 200 {object} response.Response
// @Router /borrows/{id}/approve [put]
func (h *BorrowHandler) ApproveBorrow(c *fiber.Ctx) error {
	approverID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrow request ID")
	}

	result, err := h.borrowService.ApproveBorrow(c.Context(), approverID, uint(id), c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrNotPending):
			return response.Conflict(c, "Borrow request is not pending")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is archived")
		case errors.Is(err, services.ErrInsufficientStock):
			return response.Conflict(c, "Not enough stock to approve")
		default:
			return response.InternalServerError(c, "Failed to approve borrow request")
		}
	}

	return response.Success(c, "Borrow request approved", result)
}

// RejectBorrow handles borrow rejection
// @Summary Reject borrow request
// @Description Reject a pending borrow request with a reason (staff or admin)
// @Tags Borrows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow request ID"
// @Param body body RejectRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Router /borrows/{id}/reject [put]
func (h *BorrowHandler) RejectBorrow(c *fiber.Ctx) error {
	approverID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrow request ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.borrowService.RejectBorrow(c.Context(), approverID, uint(id), req.Reason, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReasonRequired):
			return response.BadRequest(c, "Rejection reason is required")
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrNotPending):
			return response.Conflict(c, "Borrow request is not pending")
		default:
			return response.InternalServerError(c, "Failed to reject borrow request")
		}
	}

	return response.Success(c, "Borrow request rejected", result)
}

// ============================================================
// Returns
// ============================================================

// SubmitReturn handles return submission
// @Summary Submit return
// @Description Submit a return for an approved borrow
// @Tags Returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitReturnRequest true "Return data"
// @Success 201 {object} response.Response
// @Router /returns [post]
func (h *BorrowHandler) SubmitReturn(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SubmitReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BorrowRequestID == 0 || req.Quantity == 0 || req.ItemCondition == "" {
		return response.BadRequest(c, "Borrow request, quantity and item condition are required")
	}

	input := &services.SubmitReturnInput{
		BorrowRequestID: req.BorrowRequestID,
		Quantity:        req.Quantity,
		ItemCondition:   req.ItemCondition,
		Notes:           req.Notes,
	}

	result, err := h.borrowService.SubmitReturn(c.Context(), userID, input, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCondition):
			return response.BadRequest(c, "Invalid item condition")
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, "Borrow request not found")
		case errors.Is(err, services.ErrNotRequestOwner):
			return response.Forbidden(c, "You can only return your own borrows")
		case errors.Is(err, services.ErrBorrowNotApproved):
			return response.Conflict(c, "Borrow request is not approved")
		case errors.Is(err, services.ErrReturnQtyExceeds):
			return response.BadRequest(c, "Return quantity exceeds borrowed quantity")
		default:
			return response.InternalServerError(c, "Failed to submit return")
		}
	}

	return response.Created(c, "Return submitted", result)
}

// ListReturns handles return listing. Students see only their own.
// @Summary List return requests
// @Description List return requests with filters
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /returns [get]
func (h *BorrowHandler) ListReturns(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	var filterUser *uint
	if !callerRole(c).CanManageInventory() {
		filterUser = &userID
	}

	returns, total, err := h.borrowService.ListReturns(c.Context(), filterUser, c.Query("status"),
		c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return response.InternalServerError(c, "Failed to list returns")
	}

	return response.Success(c, "Returns retrieved successfully", fiber.Map{
		"returns": returns,
		"total":   total,
	})
}

// AcceptReturn handles return verification
// @Summary Accept return
// @Description Accept a pending return, restore stock and close the borrow (staff or admin)
// @Tags Returns
// @Produce json
// @Security BearerAuth
// @Param id path int true "Return request ID"
// @Success 200 {object} response.Response
// @Router /returns/{id}/accept [put]
func (h *BorrowHandler) AcceptReturn(c *fiber.Ctx) error {
	verifierID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid return request ID")
	}

	result, err := h.borrowService.AcceptReturn(c.Context(), verifierID, uint(id), c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReturnNotFound):
			return response.NotFound(c, "Return request not found")
		case errors.Is(err, services.ErrNotPending):
			return response.Conflict(c, "Return request is not pending")
		default:
			return response.InternalServerError(c, "Failed to accept return")
		}
	}

	return response.Success(c, "Return accepted", result)
}

// RejectReturn handles return rejection
// @Summary Reject return
// @Description Reject a pending return with a reason (staff or admin)
// @Tags Returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Return request ID"
// @Param body body RejectRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Router /returns/{id}/reject [put]
func (h *BorrowHandler) RejectReturn(c *fiber.Ctx) error {
	verifierID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid return request ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.borrowService.RejectReturn(c.Context(), verifierID, uint(id), req.Reason, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReasonRequired):
			return response.BadRequest(c, "Rejection reason is required")
		case errors.Is(err, services.ErrReturnNotFound):
			return response.NotFound(c, "Return request not found")
		case errors.Is(err, services.ErrNotPending):
			return response.Conflict(c, "Return request is not pending")
		default:
			return response.InternalServerError(c, "Failed to reject return")
		}
	}

	return response.Success(c, "Return rejected", result)
}

// ListOverdue handles overdue borrow listing
// @Summary List overdue borrows
// @Description List approved borrows past their due date (staff or admin)
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /borrows/overdue [get]
func (h *BorrowHandler) ListOverdue(c *fiber.Ctx) error {
	overdue, err := h.borrowService.ListOverdue(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue borrows")
	}

	return response.Success(c, "Overdue borrows retrieved successfully", fiber.Map{
		"overdue": overdue,
		"count":   len(overdue),
	})
}
