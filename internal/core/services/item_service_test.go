package services

import (
	"context"
	"errors"
	"testing"

	"lablink-inventory/internal/adapters/persistence/models"
)

func itemServiceWith(itemRepo *mockItemRepo, categoryRepo *mockCategoryRepo, borrowRepo *mockBorrowRepo) *ItemService {
	return NewItemService(itemRepo, categoryRepo, borrowRepo, newTestActivity())
}

func TestCreateItemValidation(t *testing.T) {
	categoryRepo := &mockCategoryRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Electronics"}, nil
		},
	}
	svc := itemServiceWith(&mockItemRepo{}, categoryRepo, &mockBorrowRepo{})

	input := &CreateItemInput{Code: "OSC-001", Name: "Oscilloscope", CategoryID: 1, Quantity: 0}
	if _, err := svc.CreateItem(context.Background(), 7, input, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	input.Quantity = 3
	item, err := svc.CreateItem(context.Background(), 7, input, "")
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if item.CurrentQuantity != 3 || item.TotalQuantity != 3 {
		t.Errorf("quantities = %d/%d, want 3/3", item.CurrentQuantity, item.TotalQuantity)
	}
	if item.Condition != models.ItemConditionGood {
		t.Errorf("condition = %s, want good default", item.Condition)
	}
	if item.Status != models.ItemStatusAvailable {
		t.Errorf("status = %s, want available", item.Status)
	}
}

func TestCreateItemDuplicateCode(t *testing.T) {
	categoryRepo := &mockCategoryRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id}, nil
		},
	}
	itemRepo := &mockItemRepo{
		GetByCodeFn: func(ctx context.Context, code string) (*models.Item, error) {
			return &models.Item{ID: 1, Code: code}, nil
		},
	}
	svc := itemServiceWith(itemRepo, categoryRepo, &mockBorrowRepo{})

	input := &CreateItemInput{Code: "OSC-001", Name: "Oscilloscope", CategoryID: 1, Quantity: 1}
	if _, err := svc.CreateItem(context.Background(), 7, input, ""); !errors.Is(err, ErrItemCodeExists) {
		t.Fatalf("expected ErrItemCodeExists, got %v", err)
	}
}

func TestCreateItemUnknownCategory(t *testing.T) {
	svc := itemServiceWith(&mockItemRepo{}, &mockCategoryRepo{}, &mockBorrowRepo{})

	input := &CreateItemInput{Code: "OSC-001", Name: "Oscilloscope", CategoryID: 99, Quantity: 1}
	if _, err := svc.CreateItem(context.Background(), 7, input, ""); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestAdjustQuantityBounds(t *testing.T) {
	item := &models.Item{
		ID: 1, Code: "OSC-001",
		CurrentQuantity: 2, TotalQuantity: 5,
		Status: models.ItemStatusAvailable,
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
	}
	svc := itemServiceWith(itemRepo, &mockCategoryRepo{}, &mockBorrowRepo{})

	// Removing more than the unallocated stock is rejected
	if _, err := svc.AdjustQuantity(context.Background(), 7, 1, -3, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	// Zero delta is rejected
	if _, err := svc.AdjustQuantity(context.Background(), 7, 1, 0, ""); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero delta, got %v", err)
	}

	out, err := svc.AdjustQuantity(context.Background(), 7, 1, -2, "")
	if err != nil {
		t.Fatalf("AdjustQuantity failed: %v", err)
	}
	if out.CurrentQuantity != 0 || out.TotalQuantity != 3 {
		t.Errorf("quantities = %d/%d, want 0/3", out.CurrentQuantity, out.TotalQuantity)
	}
}

func TestAdjustQuantityRestoresAvailability(t *testing.T) {
	item := &models.Item{
		ID: 1, CurrentQuantity: 0, TotalQuantity: 2,
		Status: models.ItemStatusBorrowed,
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
	}
	svc := itemServiceWith(itemRepo, &mockCategoryRepo{}, &mockBorrowRepo{})

	out, err := svc.AdjustQuantity(context.Background(), 7, 1, 2, "")
	if err != nil {
		t.Fatalf("AdjustQuantity failed: %v", err)
	}
	if out.Status != models.ItemStatusAvailable {
		t.Errorf("status = %s, want available after restock", out.Status)
	}
}

func TestArchiveItemWithOpenBorrows(t *testing.T) {
	item := &models.Item{ID: 1, Status: models.ItemStatusAvailable, IsBorrowable: true}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
	}
	borrowRepo := &mockBorrowRepo{
		CountByItemFn: func(ctx context.Context, itemID uint, statuses []string) (int64, error) {
			return 2, nil
		},
	}
	svc := itemServiceWith(itemRepo, &mockCategoryRepo{}, borrowRepo)

	if err := svc.ArchiveItem(context.Background(), 7, 1, ""); !errors.Is(err, ErrItemHasOpenBorrow) {
		t.Fatalf("expected ErrItemHasOpenBorrow, got %v", err)
	}
}

func TestArchiveItemRetires(t *testing.T) {
	item := &models.Item{ID: 1, Code: "OSC-001", Status: models.ItemStatusAvailable, IsBorrowable: true}
	var saved *models.Item
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			saved = it
			return nil
		},
	}
	svc := itemServiceWith(itemRepo, &mockCategoryRepo{}, &mockBorrowRepo{})

	if err := svc.ArchiveItem(context.Background(), 7, 1, ""); err != nil {
		t.Fatalf("ArchiveItem failed: %v", err)
	}
	if saved == nil || saved.Status != models.ItemStatusArchived {
		t.Errorf("item = %+v, want archived", saved)
	}
	if saved.IsBorrowable {
		t.Error("archived item still borrowable")
	}

	// Re-archiving is rejected
	if err := svc.ArchiveItem(context.Background(), 7, 1, ""); !errors.Is(err, ErrItemArchived) {
		t.Fatalf("expected ErrItemArchived, got %v", err)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	categoryRepo := &mockCategoryRepo{
		GetByNameFn: func(ctx context.Context, name string) (*models.Category, error) {
			return &models.Category{ID: 1, Name: name}, nil
		},
	}
	svc := itemServiceWith(&mockItemRepo{}, categoryRepo, &mockBorrowRepo{})

	if _, err := svc.CreateCategory(context.Background(), 7, &CategoryInput{Name: "Electronics"}, ""); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
}
