package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
)

func TestMaxBorrowable(t *testing.T) {
	tests := []struct {
		stock int
		want  int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{10, 5},
		{11, 5},
	}

	for _, tt := range tests {
		if got := MaxBorrowable(tt.stock); got != tt.want {
			t.Errorf("MaxBorrowable(%d) = %d, want %d", tt.stock, got, tt.want)
		}
	}
}

func borrowServiceWith(borrowRepo *mockBorrowRepo, returnRepo *mockReturnRepo, itemRepo *mockItemRepo, damageRepo *mockDamageRepo) *BorrowService {
	return NewBorrowService(borrowRepo, returnRepo, itemRepo, &mockUserRepo{}, damageRepo, newTestActivity(), newTestNotification())
}

func availableItem(id uint, qty int) *models.Item {
	return &models.Item{
		ID:              id,
		Code:            "OSC-001",
		Name:            "Oscilloscope",
		CategoryID:      1,
		CurrentQuantity: qty,
		TotalQuantity:   qty,
		Status:          models.ItemStatusAvailable,
		IsBorrowable:    true,
		Condition:       models.ItemConditionGood,
		AcquiredAt:      time.Now().AddDate(-1, 0, 0),
	}
}

func TestCreateBorrowEnforcesCap(t *testing.T) {
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) {
			return availableItem(id, 10), nil
		},
	}
	svc := borrowServiceWith(&mockBorrowRepo{}, &mockReturnRepo{}, itemRepo, &mockDamageRepo{})

	input := &CreateBorrowInput{
		ItemID:    1,
		Quantity:  6, // cap for stock 10 is 5
		StartDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 0, 7),
	}
	if _, err := svc.CreateBorrow(context.Background(), 42, input, "127.0.0.1"); !errors.Is(err, ErrQuantityExceedsCap) {
		t.Fatalf("expected ErrQuantityExceedsCap, got %v", err)
	}

	input.Quantity = 5
	req, err := svc.CreateBorrow(context.Background(), 42, input, "127.0.0.1")
	if err != nil {
		t.Fatalf("expected success at cap, got %v", err)
	}
	if req.Status != models.BorrowStatusPending {
		t.Errorf("new request status = %s, want pending", req.Status)
	}
}

func TestCreateBorrowSingleUnitItem(t *testing.T) {
	// Stock of one still allows a single-unit request
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) {
			return availableItem(id, 1), nil
		},
	}
	svc := borrowServiceWith(&mockBorrowRepo{}, &mockReturnRepo{}, itemRepo, &mockDamageRepo{})

	input := &CreateBorrowInput{
		ItemID:    1,
		Quantity:  1,
		StartDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 0, 3),
	}
	if _, err := svc.CreateBorrow(context.Background(), 42, input, ""); err != nil {
		t.Fatalf("expected success for single unit, got %v", err)
	}
}

func TestCreateBorrowRejectsBadDates(t *testing.T) {
	svc := borrowServiceWith(&mockBorrowRepo{}, &mockReturnRepo{}, &mockItemRepo{}, &mockDamageRepo{})

	start := time.Now()
	input := &CreateBorrowInput{
		ItemID:    1,
		Quantity:  1,
		StartDate: start,
		DueDate:   start, // not after start
	}
	if _, err := svc.CreateBorrow(context.Background(), 42, input, ""); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestCreateBorrowNotBorrowable(t *testing.T) {
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) {
			item := availableItem(id, 5)
			item.IsBorrowable = false
			return item, nil
		},
	}
	svc := borrowServiceWith(&mockBorrowRepo{}, &mockReturnRepo{}, itemRepo, &mockDamageRepo{})

	input := &CreateBorrowInput{
		ItemID:    1,
		Quantity:  1,
		StartDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 0, 3),
	}
	if _, err := svc.CreateBorrow(context.Background(), 42, input, ""); !errors.Is(err, ErrItemNotBorrowable) {
		t.Fatalf("expected ErrItemNotBorrowable, got %v", err)
	}
}

func TestApproveBorrowDecrementsStock(t *testing.T) {
	item := availableItem(1, 4)
	var savedItem *models.Item

	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, ItemID: 1, UserID: 42, Quantity: 2, Status: models.BorrowStatusPending}, nil
		},
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			savedItem = it
			return nil
		},
	}
	svc := borrowServiceWith(borrowRepo, &mockReturnRepo{}, itemRepo, &mockDamageRepo{})

	req, err := svc.ApproveBorrow(context.Background(), 7, 100, "")
	if err != nil {
		t.Fatalf("ApproveBorrow failed: %v", err)
	}
	if req.Status != models.BorrowStatusApproved {
		t.Errorf("status = %s, want approved", req.Status)
	}
	if savedItem == nil || savedItem.CurrentQuantity != 2 {
		t.Errorf("stock not decremented, item = %+v", savedItem)
	}
	if savedItem.Status != models.ItemStatusAvailable {
		t.Errorf("item status = %s, want available while stock remains", savedItem.Status)
	}
}

func TestApproveBorrowLastUnitsFlipStatus(t *testing.T) {
	item := availableItem(1, 2)
	var savedItem *models.Item

	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, ItemID: 1, UserID: 42, Quantity: 2, Status: models.BorrowStatusPending}, nil
		},
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			savedItem = it
			return nil
		},
	}
	svc := borrowServiceWith(borrowRepo, &mockReturnRepo{}, itemRepo, &mockDamageRepo{})

	if _, err := svc.ApproveBorrow(context.Background(), 7, 100, ""); err != nil {
		t.Fatalf("ApproveBorrow failed: %v", err)
	}
	if savedItem.CurrentQuantity != 0 {
		t.Errorf("stock = %d, want 0", savedItem.CurrentQuantity)
	}
	if savedItem.Status != models.ItemStatusBorrowed {
		t.Errorf("item status = %s, want borrowed at zero stock", savedItem.Status)
	}
}

func TestApproveBorrowNotPending(t *testing.T) {
	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, Status: models.BorrowStatusApproved}, nil
		},
	}
	svc := borrowServiceWith(borrowRepo, &mockReturnRepo{}, &mockItemRepo{}, &mockDamageRepo{})

	if _, err := svc.ApproveBorrow(context.Background(), 7, 100, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestRejectBorrowRequiresReason(t *testing.T) {
	svc := borrowServiceWith(&mockBorrowRepo{}, &mockReturnRepo{}, &mockItemRepo{}, &mockDamageRepo{})

	if _, err := svc.RejectBorrow(context.Background(), 7, 100, "", ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestSubmitReturnOwnershipAndBounds(t *testing.T) {
	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, ItemID: 1, UserID: 42, Quantity: 3, Status: models.BorrowStatusApproved}, nil
		},
	}
	svc := borrowServiceWith(borrowRepo, &mockReturnRepo{}, &mockItemRepo{}, &mockDamageRepo{})

	// Wrong owner
	input := &SubmitReturnInput{BorrowRequestID: 1, Quantity: 3, ItemCondition: models.ReturnConditionGood}
	if _, err := svc.SubmitReturn(context.Background(), 99, input, ""); !errors.Is(err, ErrNotRequestOwner) {
		t.Fatalf("expected ErrNotRequestOwner, got %v", err)
	}

	// Too many units
	input.Quantity = 4
	if _, err := svc.SubmitReturn(context.Background(), 42, input, ""); !errors.Is(err, ErrReturnQtyExceeds) {
		t.Fatalf("expected ErrReturnQtyExceeds, got %v", err)
	}

	// Unknown condition
	input.Quantity = 3
	input.ItemCondition = "pristine"
	if _, err := svc.SubmitReturn(context.Background(), 42, input, ""); !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}

	// Valid
	input.ItemCondition = models.ReturnConditionGood
	ret, err := svc.SubmitReturn(context.Background(), 42, input, "")
	if err != nil {
		t.Fatalf("SubmitReturn failed: %v", err)
	}
	if ret.Status != models.ReturnStatusPending {
		t.Errorf("return status = %s, want pending", ret.Status)
	}
}

func TestAcceptReturnRestoresStockAndClosesBorrow(t *testing.T) {
	item := availableItem(1, 0)
	item.Status = models.ItemStatusBorrowed

	var savedItem *models.Item
	var closedBorrow *models.BorrowRequest

	returnRepo := &mockReturnRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.ReturnRequest, error) {
			return &models.ReturnRequest{
				ID: id, BorrowRequestID: 100, ItemID: 1, UserID: 42,
				Quantity: 2, ItemCondition: models.ReturnConditionGood,
				Status: models.ReturnStatusPending,
			}, nil
		},
	}
	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, ItemID: 1, UserID: 42, Quantity: 2, Status: models.BorrowStatusApproved}, nil
		},
		UpdateFn: func(ctx context.Context, req *models.BorrowRequest) error {
			closedBorrow = req
			return nil
		},
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			savedItem = it
			return nil
		},
	}
	svc := borrowServiceWith(borrowRepo, returnRepo, itemRepo, &mockDamageRepo{})

	ret, err := svc.AcceptReturn(context.Background(), 7, 200, "")
	if err != nil {
		t.Fatalf("AcceptReturn failed: %v", err)
	}
	if ret.Status != models.ReturnStatusAccepted {
		t.Errorf("return status = %s, want accepted", ret.Status)
	}
	if ret.VerifiedBy == nil || *ret.VerifiedBy != 7 {
		t.Errorf("verified_by = %v, want 7", ret.VerifiedBy)
	}
	if savedItem == nil || savedItem.CurrentQuantity != 2 {
		t.Errorf("stock not restored, item = %+v", savedItem)
	}
	if savedItem.Status != models.ItemStatusAvailable {
		t.Errorf("item status = %s, want available after restore", savedItem.Status)
	}
	if closedBorrow == nil || closedBorrow.Status != models.BorrowStatusReturned {
		t.Errorf("parent borrow not closed, got %+v", closedBorrow)
	}
	if closedBorrow.ActualReturnAt == nil {
		t.Error("actual_return_at not stamped")
	}
}

func TestAcceptReturnLostWritesOffUnits(t *testing.T) {
	item := availableItem(1, 0)
	item.TotalQuantity = 3
	item.Status = models.ItemStatusBorrowed

	var savedItem *models.Item

	returnRepo := &mockReturnRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.ReturnRequest, error) {
			return &models.ReturnRequest{
				ID: id, BorrowRequestID: 100, ItemID: 1, UserID: 42,
				Quantity: 1, ItemCondition: models.ReturnConditionLost,
				Status: models.ReturnStatusPending,
			}, nil
		},
	}
	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, ItemID: 1, UserID: 42, Quantity: 1, Status: models.BorrowStatusApproved}, nil
		},
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			savedItem = it
			return nil
		},
	}
	svc := borrowServiceWith(borrowRepo, returnRepo, itemRepo, &mockDamageRepo{})

	if _, err := svc.AcceptReturn(context.Background(), 7, 200, ""); err != nil {
		t.Fatalf("AcceptReturn failed: %v", err)
	}
	if savedItem == nil {
		t.Fatal("item not updated after lost return")
	}
	if savedItem.CurrentQuantity != 0 {
		t.Errorf("current quantity = %d, want 0 (lost units not restored)", savedItem.CurrentQuantity)
	}
	if savedItem.TotalQuantity != 2 {
		t.Errorf("total quantity = %d, want 2 after write-off", savedItem.TotalQuantity)
	}
	if savedItem.Status != models.ItemStatusAvailable {
		t.Errorf("item status = %s, want available once the borrow is closed", savedItem.Status)
	}
}

func TestAcceptReturnDamagedFilesReport(t *testing.T) {
	item := availableItem(1, 0)
	var filed *models.DamageReport

	returnRepo := &mockReturnRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.ReturnRequest, error) {
			return &models.ReturnRequest{
				ID: id, BorrowRequestID: 100, ItemID: 1, UserID: 42,
				Quantity: 1, ItemCondition: models.ReturnConditionDamaged,
				Status: models.ReturnStatusPending, Notes: "cracked screen",
			}, nil
		},
	}
	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, ItemID: 1, UserID: 42, Quantity: 1, Status: models.BorrowStatusApproved}, nil
		},
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
	}
	damageRepo := &mockDamageRepo{
		CreateFn: func(ctx context.Context, report *models.DamageReport) error {
			filed = report
			return nil
		},
	}
	svc := borrowServiceWith(borrowRepo, returnRepo, itemRepo, damageRepo)

	if _, err := svc.AcceptReturn(context.Background(), 7, 200, ""); err != nil {
		t.Fatalf("AcceptReturn failed: %v", err)
	}
	if filed == nil {
		t.Fatal("no damage report filed for damaged return")
	}
	if filed.ReporterID != 7 {
		t.Errorf("reporter = %d, want verifier 7", filed.ReporterID)
	}
	if filed.Severity != models.DamageSeverityModerate {
		t.Errorf("severity = %s, want moderate", filed.Severity)
	}
	if filed.Status != models.DamageStatusPending {
		t.Errorf("status = %s, want pending", filed.Status)
	}
}

func TestRejectReturnLeavesBorrowApproved(t *testing.T) {
	borrowTouched := false

	returnRepo := &mockReturnRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.ReturnRequest, error) {
			return &models.ReturnRequest{
				ID: id, BorrowRequestID: 100, ItemID: 1, UserID: 42,
				Quantity: 1, ItemCondition: models.ReturnConditionGood,
				Status: models.ReturnStatusPending,
			}, nil
		},
	}
	borrowRepo := &mockBorrowRepo{
		UpdateFn: func(ctx context.Context, req *models.BorrowRequest) error {
			borrowTouched = true
			return nil
		},
	}
	svc := borrowServiceWith(borrowRepo, returnRepo, &mockItemRepo{}, &mockDamageRepo{})

	if _, err := svc.RejectReturn(context.Background(), 7, 200, "", ""); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	ret, err := svc.RejectReturn(context.Background(), 7, 200, "wrong item returned", "")
	if err != nil {
		t.Fatalf("RejectReturn failed: %v", err)
	}
	if ret.Status != models.ReturnStatusRejected {
		t.Errorf("return status = %s, want rejected", ret.Status)
	}
	if borrowTouched {
		t.Error("parent borrow must stay approved after a rejected return")
	}
}

func TestGetBorrowOwnership(t *testing.T) {
	borrowRepo := &mockBorrowRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.BorrowRequest, error) {
			return &models.BorrowRequest{ID: id, UserID: 42, Status: models.BorrowStatusPending}, nil
		},
	}
	svc := borrowServiceWith(borrowRepo, &mockReturnRepo{}, &mockItemRepo{}, &mockDamageRepo{})

	if _, err := svc.GetBorrow(context.Background(), 1, 99, false); !errors.Is(err, ErrNotRequestOwner) {
		t.Fatalf("expected ErrNotRequestOwner, got %v", err)
	}
	if _, err := svc.GetBorrow(context.Background(), 1, 42, false); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.GetBorrow(context.Background(), 1, 99, true); err != nil {
		t.Fatalf("staff read failed: %v", err)
	}
}
