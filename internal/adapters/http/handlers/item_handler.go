package handlers

import (
	"errors"
	"time"

	"lablink-inventory/internal/core/services"
	"lablink-inventory/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles equipment catalog endpoints
type ItemHandler struct {
	itemService *services.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItemRequest represents item creation request body
type CreateItemRequest struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	CategoryID   uint       `json:"category_id"`
	Quantity     int        `json:"quantity"`
	IsBorrowable *bool      `json:"is_borrowable"`
	Condition    string     `json:"condition"`
	Location     string     `json:"location"`
	AcquiredAt   *time.Time `json:"acquired_at"`
}

// UpdateItemRequest represents item update request body
type UpdateItemRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	CategoryID   *uint   `json:"category_id"`
	IsBorrowable *bool   `json:"is_borrowable"`
	Condition    *string `json:"condition"`
	Location     *string `json:"location"`
}

// AdjustQuantityRequest represents stock adjustment request body
type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// CategoryRequest represents category create/update request body
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateItem handles item creation
// @Summary Create item
// @Description Add an item to the catalog (staff or admin)
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateItemRequest true "Item data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /items [post]
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" || req.Name == "" || req.CategoryID == 0 {
		return response.BadRequest(c, "Code, name and category are required")
	}

	input := &services.CreateItemInput{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Quantity:     req.Quantity,
		IsBorrowable: true,
		Condition:    req.Condition,
		Location:     req.Location,
	}
	if req.IsBorrowable != nil {
		input.IsBorrowable = *req.IsBorrowable
	}
	if req.AcquiredAt != nil {
		input.AcquiredAt = *req.AcquiredAt
	}

	item, err := h.itemService.CreateItem(c.Context(), actorID, input, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Quantity must be positive")
		case errors.Is(err, services.ErrCategoryNotFound):
			return response.BadRequest(c, "Category not found")
		case errors.Is(err, services.ErrItemCodeExists):
			return response.Conflict(c, "Item code already exists")
		default:
			return response.InternalServerError(c, "Failed to create item")
		}
	}

	return response.Created(c, "Item created successfully", item)
}

// ListItems handles catalog listing
// @Summary List items
// @Description List catalog items with filters
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param category_id query int false "Category filter"
// @Param status query string false "Status filter"
// @Param search query string false "Name or code search"
// @Success 200 {object} response.Response
// @Router /items [get]
func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	input := &services.ListItemsInput{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 20),
		Status:    c.Query("status"),
		Condition: c.Query("condition"),
		Search:    c.Query("search"),
	}
	if categoryID := c.QueryInt("category_id", 0); categoryID > 0 {
		id := uint(categoryID)
		input.CategoryID = &id
	}
	if b := c.Query("borrowable"); b != "" {
		v := b == "true" || b == "1"
		input.Borrowable = &v
	}

	result, err := h.itemService.ListItems(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list items")
	}

	return response.Success(c, "Items retrieved successfully", result)
}

// GetItem handles fetching one item
// @Summary Get item
// @Description Get an item by ID
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /items/{id} [get]
func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid item ID")
	}

	item, err := h.itemService.GetItem(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			return response.NotFound(c, "Item not found")
		}
		return response.InternalServerError(c, "Failed to get item")
	}

	return response.Success(c, "Item retrieved successfully", item)
}

// UpdateItem handles item updates
// @Summary Update item
// @Description Update item metadata (staff or admin)
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body UpdateItemRequest true "Item data"
// @Success 200 {object} response.Response
// @Router /items/{id} [put]
func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid item ID")
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateItemInput{
		Name:         req.Name,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		IsBorrowable: req.IsBorrowable,
		Condition:    req.Condition,
		Location:     req.Location,
	}

	item, err := h.itemService.UpdateItem(c.Context(), actorID, uint(id), input, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is archived")
		case errors.Is(err, services.ErrCategoryNotFound):
			return response.BadRequest(c, "Category not found")
		default:
			return response.InternalServerError(c, "Failed to update item")
		}
	}

	return response.Success(c, "Item updated successfully", item)
}

// AdjustQuantity handles stock adjustments
// @Summary Adjust item quantity
// @Description Add or remove stock units (staff or admin)
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body AdjustQuantityRequest true "Quantity delta"
// @Success 200 {object} response.Response
// @Router /items/{id}/quantity [put]
func (h *ItemHandler) AdjustQuantity(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid item ID")
	}

	var req AdjustQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.itemService.AdjustQuantity(c.Context(), actorID, uint(id), req.Delta, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is archived")
		case errors.Is(err, services.ErrInvalidQuantity):
			return response.BadRequest(c, "Invalid quantity adjustment")
		default:
			return response.InternalServerError(c, "Failed to adjust quantity")
		}
	}

	return response.Success(c, "Quantity adjusted successfully", item)
}

// ArchiveItem handles item archival
// @Summary Archive item
// @Description Retire an item from circulation (staff or admin)
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Router /items/{id}/archive [put]
func (h *ItemHandler) ArchiveItem(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid item ID")
	}

	if err := h.itemService.ArchiveItem(c.Context(), actorID, uint(id), c.IP()); err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, services.ErrItemArchived):
			return response.BadRequest(c, "Item is already archived")
		case errors.Is(err, services.ErrItemHasOpenBorrow):
			return response.Conflict(c, "Item has open borrow requests")
		default:
			return response.InternalServerError(c, "Failed to archive item")
		}
	}

	return response.Success(c, "Item archived successfully", nil)
}

// ============================================================
// Categories
// ============================================================

// ListCategories handles category listing
// @Summary List categories
// @Description List all item categories
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /categories [get]
func (h *ItemHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.itemService.ListCategories(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}
	return response.Success(c, "Categories retrieved successfully", categories)
}

// CreateCategory handles category creation
// @Summary Create category
// @Description Create an item category (staff or admin)
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryRequest true "Category data"
// @Success 201 {object} response.Response
// @Router /categories [post]
func (h *ItemHandler) CreateCategory(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	category, err := h.itemService.CreateCategory(c.Context(), actorID, &services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	}, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrCategoryExists) {
			return response.Conflict(c, "Category already exists")
		}
		return response.InternalServerError(c, "Failed to create category")
	}

	return response.Created(c, "Category created successfully", category)
}

// UpdateCategory handles category updates
// @Summary Update category
// @Description Update an item category (staff or admin)
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param body body CategoryRequest true "Category data"
// @Success 200 {object} response.Response
// @Router /categories/{id} [put]
func (h *ItemHandler) UpdateCategory(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid category ID")
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	category, err := h.itemService.UpdateCategory(c.Context(), actorID, uint(id), &services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	}, c.IP())
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to update category")
	}

	return response.Success(c, "Category updated successfully", category)
}

// DeleteCategory handles category deletion
// @Summary Delete category
// @Description Delete an item category (admin only)
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Router /categories/{id} [delete]
func (h *ItemHandler) DeleteCategory(c *fiber.Ctx) error {
	actorID, _ := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid category ID")
	}

	if err := h.itemService.DeleteCategory(c.Context(), actorID, uint(id), c.IP()); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to delete category")
	}

	return response.Success(c, "Category deleted successfully", nil)
}
