package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Catalog errors
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrItemCodeExists    = errors.New("item code already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryExists    = errors.New("category already exists")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrItemArchived      = errors.New("item is archived")
	ErrItemHasOpenBorrow = errors.New("item has open borrow requests")
)

// ItemService handles equipment catalog business logic
type ItemService struct {
	itemRepo     repositories.ItemRepository
	categoryRepo repositories.CategoryRepository
	borrowRepo   repositories.BorrowRepository
	activity     *ActivityService
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo repositories.ItemRepository,
	categoryRepo repositories.CategoryRepository,
	borrowRepo repositories.BorrowRepository,
	activity *ActivityService,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		borrowRepo:   borrowRepo,
		activity:     activity,
	}
}

// CreateItemInput represents item creation input
type CreateItemInput struct {
	Code         string    `json:"code" validate:"required,max=50"`
	Name         string    `json:"name" validate:"required,max=200"`
	Description  string    `json:"description,omitempty"`
	CategoryID   uint      `json:"category_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,min=1"`
	IsBorrowable bool      `json:"is_borrowable"`
	Condition    string    `json:"condition,omitempty"`
	Location     string    `json:"location,omitempty"`
	AcquiredAt   time.Time `json:"acquired_at,omitempty"`
}

// UpdateItemInput represents item update input
type UpdateItemInput struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	CategoryID   *uint   `json:"category_id,omitempty"`
	IsBorrowable *bool   `json:"is_borrowable,omitempty"`
	Condition    *string `json:"condition,omitempty"`
	Location     *string `json:"location,omitempty"`
}

// ListItemsInput represents item listing input
type ListItemsInput struct {
	Page       int
	Limit      int
	CategoryID *uint
	Status     string
	Condition  string
	Search     string
	Borrowable *bool
}

// ListItemsOutput represents item listing output
type ListItemsOutput struct {
	Items      []*models.ItemResponse `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// CreateItem creates a new catalog item
func (s *ItemService) CreateItem(ctx context.Context, actorID uint, input *CreateItemInput, ipAddress string) (*models.ItemResponse, error) {
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if _, err := s.itemRepo.GetByCode(ctx, input.Code); err == nil {
		return nil, ErrItemCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	condition := input.Condition
	if condition == "" {
		condition = models.ItemConditionGood
	}
	acquiredAt := input.AcquiredAt
	if acquiredAt.IsZero() {
		acquiredAt = time.Now()
	}

	item := &models.Item{
		Code:            input.Code,
		Name:            input.Name,
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		CurrentQuantity: input.Quantity,
		TotalQuantity:   input.Quantity,
		Status:          models.ItemStatusAvailable,
		IsBorrowable:    input.IsBorrowable,
		Condition:       condition,
		Location:        input.Location,
		AcquiredAt:      acquiredAt,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionCreate, "item", item.ID,
		fmt.Sprintf("created item %s (%s) qty %d", item.Code, item.Name, item.TotalQuantity), ipAddress)

	return item.ToResponse(), nil
}

// GetItem gets an item by ID
func (s *ItemService) GetItem(ctx context.Context, id uint) (*models.ItemResponse, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item.ToResponse(), nil
}

// ListItems lists catalog items with filters and pagination
func (s *ItemService) ListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := &repositories.ItemFilter{
		CategoryID: input.CategoryID,
		Status:     input.Status,
		Condition:  input.Condition,
		Search:     input.Search,
		Borrowable: input.Borrowable,
		Offset:     (input.Page - 1) * input.Limit,
		Limit:      input.Limit,
	}

	items, total, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.ItemResponse, 0, len(items))
	for _, it := range items {
		responses = append(responses, it.ToResponse())
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListItemsOutput{
		Items:      responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateItem updates item metadata
func (s *ItemService) UpdateItem(ctx context.Context, actorID, id uint, input *UpdateItemInput, ipAddress string) (*models.ItemResponse, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Status == models.ItemStatusArchived {
		return nil, ErrItemArchived
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		item.CategoryID = *input.CategoryID
		item.Category = nil
	}
	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.IsBorrowable != nil {
		item.IsBorrowable = *input.IsBorrowable
	}
	if input.Condition != nil {
		item.Condition = *input.Condition
	}
	if input.Location != nil {
		item.Location = *input.Location
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionUpdate, "item", item.ID,
		fmt.Sprintf("updated item %s", item.Code), ipAddress)

	return item.ToResponse(), nil
}

// AdjustQuantity changes total stock of an item. Positive delta adds
// units, negative delta removes unallocated units.
func (s *ItemService) AdjustQuantity(ctx context.Context, actorID, id uint, delta int, ipAddress string) (*models.ItemResponse, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Status == models.ItemStatusArchived {
		return nil, ErrItemArchived
	}

	if delta < 0 && item.CurrentQuantity+delta < 0 {
		return nil, ErrInvalidQuantity
	}
	if item.TotalQuantity+delta < 1 {
		return nil, ErrInvalidQuantity
	}

	item.CurrentQuantity += delta
	item.TotalQuantity += delta
	if item.CurrentQuantity > 0 && item.Status == models.ItemStatusBorrowed {
		item.Status = models.ItemStatusAvailable
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionUpdate, "item", item.ID,
		fmt.Sprintf("adjusted quantity by %+d (now %d/%d)", delta, item.CurrentQuantity, item.TotalQuantity), ipAddress)

	return item.ToResponse(), nil
}

// ArchiveItem retires an item from circulation. Items with open borrows
// cannot be archived.
func (s *ItemService) ArchiveItem(ctx context.Context, actorID, id uint, ipAddress string) error {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if item.Status == models.ItemStatusArchived {
		return ErrItemArchived
	}

	open, err := s.borrowRepo.CountByItem(ctx, id, []string{
		models.BorrowStatusPending,
		models.BorrowStatusApproved,
	})
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrItemHasOpenBorrow
	}

	item.Status = models.ItemStatusArchived
	item.IsBorrowable = false
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}

	s.activity.Record(ctx, actorID, models.ActionStatusChange, "item", item.ID,
		fmt.Sprintf("archived item %s", item.Code), ipAddress)
	return nil
}

// ============================================================
// Categories
// ============================================================

// CategoryInput represents category create/update input
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty"`
}

// CreateCategory creates a new category
func (s *ItemService) CreateCategory(ctx context.Context, actorID uint, input *CategoryInput, ipAddress string) (*models.Category, error) {
	if _, err := s.categoryRepo.GetByName(ctx, input.Name); err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionCreate, "category", category.ID,
		fmt.Sprintf("created category %s", category.Name), ipAddress)
	return category, nil
}

// ListCategories lists all categories
func (s *ItemService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// UpdateCategory updates a category
func (s *ItemService) UpdateCategory(ctx context.Context, actorID, id uint, input *CategoryInput, ipAddress string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	category.Name = input.Name
	category.Description = input.Description
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionUpdate, "category", category.ID,
		fmt.Sprintf("updated category %s", category.Name), ipAddress)
	return category, nil
}

// DeleteCategory soft deletes a category
func (s *ItemService) DeleteCategory(ctx context.Context, actorID, id uint, ipAddress string) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, actorID, models.ActionDelete, "category", id, "", ipAddress)
	return nil
}
