package services

import (
	"context"
	"errors"
	"testing"

	"lablink-inventory/internal/adapters/persistence/models"
)

func maintenanceServiceWith(maintenanceRepo *mockMaintenanceRepo, itemRepo *mockItemRepo, userRepo *mockUserRepo) *MaintenanceService {
	return NewMaintenanceService(maintenanceRepo, itemRepo, userRepo, newTestActivity())
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.MaintenanceStatusPending, models.MaintenanceStatusInProgress, true},
		{models.MaintenanceStatusPending, models.MaintenanceStatusOnHold, true},
		{models.MaintenanceStatusPending, models.MaintenanceStatusCompleted, false},
		{models.MaintenanceStatusInProgress, models.MaintenanceStatusCompleted, true},
		{models.MaintenanceStatusInProgress, models.MaintenanceStatusOnHold, true},
		{models.MaintenanceStatusInProgress, models.MaintenanceStatusPending, false},
		{models.MaintenanceStatusOnHold, models.MaintenanceStatusPending, false},
		{models.MaintenanceStatusOnHold, models.MaintenanceStatusInProgress, true},
		{models.MaintenanceStatusOnHold, models.MaintenanceStatusCompleted, false},
		{models.MaintenanceStatusCompleted, models.MaintenanceStatusPending, false},
		{models.MaintenanceStatusCompleted, models.MaintenanceStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := transitionAllowed(tt.from, tt.to); got != tt.allowed {
			t.Errorf("transitionAllowed(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	maintenanceRepo := &mockMaintenanceRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
			return &models.MaintenanceRecord{ID: id, ItemID: 1, Status: models.MaintenanceStatusPending}, nil
		},
	}
	svc := maintenanceServiceWith(maintenanceRepo, &mockItemRepo{}, &mockUserRepo{})

	if _, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusCompleted, nil, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionStartStampsOnce(t *testing.T) {
	rec := &models.MaintenanceRecord{ID: 1, ItemID: 1, Status: models.MaintenanceStatusPending}
	maintenanceRepo := &mockMaintenanceRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.MaintenanceRecord, error) { return rec, nil },
	}
	svc := maintenanceServiceWith(maintenanceRepo, &mockItemRepo{}, &mockUserRepo{})

	out, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusInProgress, nil, "")
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if out.StartedAt == nil {
		t.Fatal("started_at not stamped")
	}
	first := *out.StartedAt

	// on_hold then back to in_progress keeps the original start
	if _, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusOnHold, nil, ""); err != nil {
		t.Fatalf("Transition to on_hold failed: %v", err)
	}
	out, err = svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusInProgress, nil, "")
	if err != nil {
		t.Fatalf("Transition back to in_progress failed: %v", err)
	}
	if !out.StartedAt.Equal(first) {
		t.Errorf("started_at restamped: %v != %v", out.StartedAt, first)
	}
}

func TestTransitionCompleteStampsAndRecordsCost(t *testing.T) {
	rec := &models.MaintenanceRecord{ID: 1, ItemID: 1, Status: models.MaintenanceStatusInProgress}
	maintenanceRepo := &mockMaintenanceRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.MaintenanceRecord, error) { return rec, nil },
	}
	svc := maintenanceServiceWith(maintenanceRepo, &mockItemRepo{}, &mockUserRepo{})

	cost := 149.50
	out, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusCompleted, &cost, "")
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if out.ActualCompletionAt == nil {
		t.Error("actual_completion_at not stamped")
	}
	if out.Cost != cost {
		t.Errorf("cost = %v, want %v", out.Cost, cost)
	}
}

func TestTransitionSyncsItemStatus(t *testing.T) {
	item := &models.Item{ID: 1, CurrentQuantity: 3, Status: models.ItemStatusAvailable}
	var savedItem *models.Item

	rec := &models.MaintenanceRecord{ID: 1, ItemID: 1, Status: models.MaintenanceStatusPending}
	maintenanceRepo := &mockMaintenanceRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.MaintenanceRecord, error) { return rec, nil },
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			savedItem = it
			return nil
		},
	}
	svc := maintenanceServiceWith(maintenanceRepo, itemRepo, &mockUserRepo{})

	if _, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusInProgress, nil, ""); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if savedItem == nil || savedItem.Status != models.ItemStatusUnderMaintenance {
		t.Errorf("item status = %+v, want under_maintenance", savedItem)
	}

	if _, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusCompleted, nil, ""); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if savedItem.Status != models.ItemStatusAvailable {
		t.Errorf("item status = %s, want available after completion with stock", savedItem.Status)
	}
}

func TestTransitionCompleteWithZeroStockMarksBorrowed(t *testing.T) {
	item := &models.Item{ID: 1, CurrentQuantity: 0, Status: models.ItemStatusUnderMaintenance}
	var savedItem *models.Item

	rec := &models.MaintenanceRecord{ID: 1, ItemID: 1, Status: models.MaintenanceStatusInProgress}
	maintenanceRepo := &mockMaintenanceRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.MaintenanceRecord, error) { return rec, nil },
	}
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) { return item, nil },
		UpdateFn: func(ctx context.Context, it *models.Item) error {
			savedItem = it
			return nil
		},
	}
	svc := maintenanceServiceWith(maintenanceRepo, itemRepo, &mockUserRepo{})

	if _, err := svc.Transition(context.Background(), 7, 1, models.MaintenanceStatusCompleted, nil, ""); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if savedItem == nil || savedItem.Status != models.ItemStatusBorrowed {
		t.Errorf("item status = %+v, want borrowed when stock is out", savedItem)
	}
}

func TestUpdateTicketFrozenWhenCompleted(t *testing.T) {
	maintenanceRepo := &mockMaintenanceRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
			return &models.MaintenanceRecord{ID: id, Status: models.MaintenanceStatusCompleted}, nil
		},
	}
	svc := maintenanceServiceWith(maintenanceRepo, &mockItemRepo{}, &mockUserRepo{})

	title := "new title"
	if _, err := svc.UpdateTicket(context.Background(), 7, 1, &UpdateTicketInput{Title: &title}, ""); !errors.Is(err, ErrMaintenanceCompleted) {
		t.Fatalf("expected ErrMaintenanceCompleted, got %v", err)
	}
	if _, err := svc.AssignTechnician(context.Background(), 7, 1, 5, ""); !errors.Is(err, ErrMaintenanceCompleted) {
		t.Fatalf("expected ErrMaintenanceCompleted on assign, got %v", err)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) {
			return &models.Item{ID: id, Code: "OSC-001", Status: models.ItemStatusAvailable}, nil
		},
	}
	svc := maintenanceServiceWith(&mockMaintenanceRepo{}, itemRepo, &mockUserRepo{})

	input := &CreateMaintenanceInput{ItemID: 1, Title: "Calibration", Priority: "urgent"}
	if _, err := svc.CreateTicket(context.Background(), 7, input, ""); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}

	input.Priority = ""
	rec, err := svc.CreateTicket(context.Background(), 7, input, "")
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	if rec.Priority != models.MaintenancePriorityMedium {
		t.Errorf("priority = %s, want medium default", rec.Priority)
	}
	if rec.Status != models.MaintenanceStatusPending {
		t.Errorf("status = %s, want pending", rec.Status)
	}
}

func TestCreateTicketUnknownTechnician(t *testing.T) {
	itemRepo := &mockItemRepo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.Item, error) {
			return &models.Item{ID: id, Status: models.ItemStatusAvailable}, nil
		},
	}
	svc := maintenanceServiceWith(&mockMaintenanceRepo{}, itemRepo, &mockUserRepo{})

	techID := uint(999)
	input := &CreateMaintenanceInput{ItemID: 1, Title: "Repair", TechnicianID: &techID}
	if _, err := svc.CreateTicket(context.Background(), 7, input, ""); !errors.Is(err, ErrTechnicianNotFound) {
		t.Fatalf("expected ErrTechnicianNotFound, got %v", err)
	}
}
