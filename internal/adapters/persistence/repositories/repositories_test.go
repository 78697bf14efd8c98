package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	cat := &models.Category{Name: "Electronics", IsActive: true}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return cat
}

func seedItem(t *testing.T, db *gorm.DB, code string, categoryID uint, qty int) *models.Item {
	t.Helper()
	item := &models.Item{
		Code:            code,
		Name:            "Test " + code,
		CategoryID:      categoryID,
		CurrentQuantity: qty,
		TotalQuantity:   qty,
		Status:          models.ItemStatusAvailable,
		IsBorrowable:    true,
		Condition:       models.ItemConditionGood,
		AcquiredAt:      time.Now().AddDate(-1, 0, 0),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestItemRepositoryCRUD(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	item := seedItem(t, db, "OSC-001", cat.ID, 3)

	got, err := repo.GetByCode(ctx, "OSC-001")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if got.ID != item.ID {
		t.Errorf("got item %d, want %d", got.ID, item.ID)
	}
	if got.Category == nil || got.Category.Name != "Electronics" {
		t.Errorf("category not preloaded: %+v", got.Category)
	}

	if _, err := repo.GetByCode(ctx, "NOPE"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	// Soft delete hides the row
	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, item.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("deleted item still visible, err = %v", err)
	}
}

func TestItemRepositoryListFilters(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	repo := NewItemRepository(db)
	ctx := context.Background()

	seedItem(t, db, "OSC-001", cat.ID, 3)
	archived := seedItem(t, db, "OSC-002", cat.ID, 1)
	db.Model(archived).Update("status", models.ItemStatusArchived)

	items, total, err := repo.List(ctx, &ItemFilter{Status: models.ItemStatusAvailable, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("available items = %d (total %d), want 1", len(items), total)
	}

	items, _, err = repo.List(ctx, &ItemFilter{Search: "OSC", Limit: 10})
	if err != nil {
		t.Fatalf("List with search failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("search matched %d items, want 2", len(items))
	}

	// Evaluation listing excludes archived stock
	forEval, err := repo.ListForEvaluation(ctx, nil)
	if err != nil {
		t.Fatalf("ListForEvaluation failed: %v", err)
	}
	if len(forEval) != 1 {
		t.Errorf("evaluation items = %d, want 1", len(forEval))
	}
}

func TestBorrowRepositoryOverdue(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	item := seedItem(t, db, "OSC-001", cat.ID, 3)
	repo := NewBorrowRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "jdoe", Email: "jdoe@example.edu", Password: "x", Role: "STUDENT", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	now := time.Now()
	overdue := &models.BorrowRequest{
		ItemID: item.ID, UserID: user.ID, Quantity: 1,
		Status:    models.BorrowStatusApproved,
		StartDate: now.AddDate(0, 0, -14),
		DueDate:   now.AddDate(0, 0, -7),
	}
	current := &models.BorrowRequest{
		ItemID: item.ID, UserID: user.ID, Quantity: 1,
		Status:    models.BorrowStatusApproved,
		StartDate: now,
		DueDate:   now.AddDate(0, 0, 7),
	}
	pendingLate := &models.BorrowRequest{
		ItemID: item.ID, UserID: user.ID, Quantity: 1,
		Status:    models.BorrowStatusPending,
		StartDate: now.AddDate(0, 0, -14),
		DueDate:   now.AddDate(0, 0, -7),
	}
	for _, req := range []*models.BorrowRequest{overdue, current, pendingLate} {
		if err := repo.Create(ctx, req); err != nil {
			t.Fatalf("seed borrow: %v", err)
		}
	}

	got, err := repo.ListOverdue(ctx, now)
	if err != nil {
		t.Fatalf("ListOverdue failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("overdue = %d, want 1 (approved and past due only)", len(got))
	}
	if got[0].ID != overdue.ID {
		t.Errorf("overdue request = %d, want %d", got[0].ID, overdue.ID)
	}
	if got[0].Borrower == nil || got[0].Borrower.Username != "jdoe" {
		t.Error("borrower not preloaded")
	}
}

func TestBorrowRepositoryCountByItem(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	item := seedItem(t, db, "OSC-001", cat.ID, 3)
	repo := NewBorrowRepository(db)
	ctx := context.Background()

	now := time.Now()
	statuses := []string{models.BorrowStatusPending, models.BorrowStatusApproved, models.BorrowStatusRejected}
	for _, status := range statuses {
		req := &models.BorrowRequest{
			ItemID: item.ID, UserID: 1, Quantity: 1,
			Status: status, StartDate: now, DueDate: now.AddDate(0, 0, 7),
		}
		if err := repo.Create(ctx, req); err != nil {
			t.Fatalf("seed borrow: %v", err)
		}
	}

	count, err := repo.CountByItem(ctx, item.ID, []string{models.BorrowStatusPending, models.BorrowStatusApproved})
	if err != nil {
		t.Fatalf("CountByItem failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestMaintenanceRepositoryOpenAndLastCompleted(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	item := seedItem(t, db, "OSC-001", cat.ID, 3)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()

	open, err := repo.HasOpenForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("HasOpenForItem failed: %v", err)
	}
	if open {
		t.Error("open ticket reported for clean item")
	}

	rec := &models.MaintenanceRecord{
		ItemID: item.ID, Title: "Calibration",
		Priority:  models.MaintenancePriorityMedium,
		Status:    models.MaintenanceStatusPending,
		CreatedBy: 1,
	}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	open, err = repo.HasOpenForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("HasOpenForItem failed: %v", err)
	}
	if !open {
		t.Error("pending ticket not reported as open")
	}

	// Completing the ticket closes it and sets the completion marker
	done := time.Now().AddDate(0, 0, -3)
	rec.Status = models.MaintenanceStatusCompleted
	rec.ActualCompletionAt = &done
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	open, err = repo.HasOpenForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("HasOpenForItem failed: %v", err)
	}
	if open {
		t.Error("completed ticket still reported as open")
	}

	last, err := repo.LastCompletedAt(ctx, item.ID)
	if err != nil {
		t.Fatalf("LastCompletedAt failed: %v", err)
	}
	if last == nil {
		t.Fatal("no completion time returned")
	}
	if last.Sub(done) > time.Second || done.Sub(*last) > time.Second {
		t.Errorf("last completed = %v, want ~%v", last, done)
	}
}

func TestScheduleRepositoryHasUpcoming(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	item := seedItem(t, db, "OSC-001", cat.ID, 3)
	repo := NewMaintenanceScheduleRepository(db)
	ctx := context.Background()

	now := time.Now()
	upcoming, err := repo.HasUpcoming(ctx, 1, item.ID, now)
	if err != nil {
		t.Fatalf("HasUpcoming failed: %v", err)
	}
	if upcoming {
		t.Error("upcoming schedule reported before any exist")
	}

	schedule := &models.MaintenanceSchedule{
		ItemID: item.ID, RuleID: 1,
		DueDate: now.AddDate(0, 0, 7),
		Reason:  "borrow_count: 12 >= 10",
	}
	if err := repo.Create(ctx, schedule); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	upcoming, err = repo.HasUpcoming(ctx, 1, item.ID, now)
	if err != nil {
		t.Fatalf("HasUpcoming failed: %v", err)
	}
	if !upcoming {
		t.Error("upcoming schedule not found")
	}

	// Another rule's schedule does not dedupe this rule
	upcoming, err = repo.HasUpcoming(ctx, 2, item.ID, now)
	if err != nil {
		t.Fatalf("HasUpcoming failed: %v", err)
	}
	if upcoming {
		t.Error("schedule from rule 1 deduped rule 2")
	}
}

func TestRefreshTokenRepositoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	token := &models.RefreshToken{
		UserID:    1,
		TokenHash: "hash-1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := repo.Create(ctx, token); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetByTokenHash failed: %v", err)
	}
	if got.UserID != 1 {
		t.Errorf("user_id = %d, want 1", got.UserID)
	}

	if err := repo.RevokeAllByUserID(ctx, 1); err != nil {
		t.Fatalf("RevokeAllByUserID failed: %v", err)
	}
	got, err = repo.GetByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetByTokenHash after revoke failed: %v", err)
	}
	if got.RevokedAt == nil {
		t.Error("revoked_at not stamped")
	}

	// Expired rows are physically removed
	expired := &models.RefreshToken{
		UserID:    1,
		TokenHash: "hash-2",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.DeleteExpired(ctx); err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if _, err := repo.GetByTokenHash(ctx, "hash-2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expired token still present, err = %v", err)
	}
}
