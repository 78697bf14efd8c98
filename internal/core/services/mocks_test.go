package services

import (
	"context"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Function-field mocks for the repository interfaces. Unset lookup
// functions report gorm.ErrRecordNotFound; unset writes succeed.

type mockUserRepo struct {
	CreateFn           func(ctx context.Context, user *models.User) error
	GetByIDFn          func(ctx context.Context, id uint) (*models.User, error)
	GetByUsernameFn    func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	UpdateFn           func(ctx context.Context, user *models.User) error
	DeleteFn           func(ctx context.Context, id uint) error
	ListFn             func(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListAllFn          func(ctx context.Context) ([]*models.User, error)
	ListByRoleFn       func(ctx context.Context, role string) ([]*models.User, error)
	ExistsByUsernameFn func(ctx context.Context, username string) (bool, error)
	ExistsByEmailFn    func(ctx context.Context, email string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	if m.ListByRoleFn != nil {
		return m.ListByRoleFn(ctx, role)
	}
	return nil, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.ExistsByUsernameFn != nil {
		return m.ExistsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFn != nil {
		return m.ExistsByEmailFn(ctx, email)
	}
	return false, nil
}

type mockRefreshTokenRepo struct {
	CreateFn            func(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHashFn    func(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHashFn func(ctx context.Context, tokenHash string) error
	RevokeAllByUserIDFn func(ctx context.Context, userID uint) error
	DeleteExpiredFn     func(ctx context.Context) error
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if m.GetByTokenHashFn != nil {
		return m.GetByTokenHashFn(ctx, tokenHash)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if m.RevokeByTokenHashFn != nil {
		return m.RevokeByTokenHashFn(ctx, tokenHash)
	}
	return nil
}

func (m *mockRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	if m.RevokeAllByUserIDFn != nil {
		return m.RevokeAllByUserIDFn(ctx, userID)
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx)
	}
	return nil
}

type mockCategoryRepo struct {
	CreateFn    func(ctx context.Context, category *models.Category) error
	GetByIDFn   func(ctx context.Context, id uint) (*models.Category, error)
	GetByNameFn func(ctx context.Context, name string) (*models.Category, error)
	ListFn      func(ctx context.Context) ([]*models.Category, error)
	UpdateFn    func(ctx context.Context, category *models.Category) error
	DeleteFn    func(ctx context.Context, id uint) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

type mockItemRepo struct {
	CreateFn            func(ctx context.Context, item *models.Item) error
	GetByIDFn           func(ctx context.Context, id uint) (*models.Item, error)
	GetByCodeFn         func(ctx context.Context, code string) (*models.Item, error)
	UpdateFn            func(ctx context.Context, item *models.Item) error
	DeleteFn            func(ctx context.Context, id uint) error
	ListFn              func(ctx context.Context, filter *repositories.ItemFilter) ([]*models.Item, int64, error)
	ListForEvaluationFn func(ctx context.Context, categoryID *uint) ([]*models.Item, error)
}

func (m *mockItemRepo) Create(ctx context.Context, item *models.Item) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) GetByCode(ctx context.Context, code string) (*models.Item, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) Update(ctx context.Context, item *models.Item) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockItemRepo) List(ctx context.Context, filter *repositories.ItemFilter) ([]*models.Item, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockItemRepo) ListForEvaluation(ctx context.Context, categoryID *uint) ([]*models.Item, error) {
	if m.ListForEvaluationFn != nil {
		return m.ListForEvaluationFn(ctx, categoryID)
	}
	return nil, nil
}

type mockBorrowRepo struct {
	CreateFn      func(ctx context.Context, req *models.BorrowRequest) error
	GetByIDFn     func(ctx context.Context, id uint) (*models.BorrowRequest, error)
	UpdateFn      func(ctx context.Context, req *models.BorrowRequest) error
	ListFn        func(ctx context.Context, filter *repositories.BorrowFilter) ([]*models.BorrowRequest, int64, error)
	CountByItemFn func(ctx context.Context, itemID uint, statuses []string) (int64, error)
	ListOverdueFn func(ctx context.Context, asOf time.Time) ([]*models.BorrowRequest, error)
	ListAllFn     func(ctx context.Context) ([]*models.BorrowRequest, error)
}

func (m *mockBorrowRepo) Create(ctx context.Context, req *models.BorrowRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	return nil
}

func (m *mockBorrowRepo) GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBorrowRepo) Update(ctx context.Context, req *models.BorrowRequest) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, req)
	}
	return nil
}

func (m *mockBorrowRepo) List(ctx context.Context, filter *repositories.BorrowFilter) ([]*models.BorrowRequest, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockBorrowRepo) CountByItem(ctx context.Context, itemID uint, statuses []string) (int64, error) {
	if m.CountByItemFn != nil {
		return m.CountByItemFn(ctx, itemID, statuses)
	}
	return 0, nil
}

func (m *mockBorrowRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowRequest, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, asOf)
	}
	return nil, nil
}

func (m *mockBorrowRepo) ListAll(ctx context.Context) ([]*models.BorrowRequest, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, nil
}

type mockReturnRepo struct {
	CreateFn  func(ctx context.Context, req *models.ReturnRequest) error
	GetByIDFn func(ctx context.Context, id uint) (*models.ReturnRequest, error)
	UpdateFn  func(ctx context.Context, req *models.ReturnRequest) error
	ListFn    func(ctx context.Context, filter *repositories.ReturnFilter) ([]*models.ReturnRequest, int64, error)
}

func (m *mockReturnRepo) Create(ctx context.Context, req *models.ReturnRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, req)
	}
	return nil
}

func (m *mockReturnRepo) GetByID(ctx context.Context, id uint) (*models.ReturnRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReturnRepo) Update(ctx context.Context, req *models.ReturnRequest) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, req)
	}
	return nil
}

func (m *mockReturnRepo) List(ctx context.Context, filter *repositories.ReturnFilter) ([]*models.ReturnRequest, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

type mockMaintenanceRepo struct {
	CreateFn          func(ctx context.Context, rec *models.MaintenanceRecord) error
	GetByIDFn         func(ctx context.Context, id uint) (*models.MaintenanceRecord, error)
	UpdateFn          func(ctx context.Context, rec *models.MaintenanceRecord) error
	ListFn            func(ctx context.Context, filter *repositories.MaintenanceFilter) ([]*models.MaintenanceRecord, int64, error)
	HasOpenForItemFn  func(ctx context.Context, itemID uint) (bool, error)
	LastCompletedAtFn func(ctx context.Context, itemID uint) (*time.Time, error)
	ListAllFn         func(ctx context.Context) ([]*models.MaintenanceRecord, error)
}

func (m *mockMaintenanceRepo) Create(ctx context.Context, rec *models.MaintenanceRecord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, rec)
	}
	return nil
}

func (m *mockMaintenanceRepo) GetByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMaintenanceRepo) Update(ctx context.Context, rec *models.MaintenanceRecord) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, rec)
	}
	return nil
}

func (m *mockMaintenanceRepo) List(ctx context.Context, filter *repositories.MaintenanceFilter) ([]*models.MaintenanceRecord, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockMaintenanceRepo) HasOpenForItem(ctx context.Context, itemID uint) (bool, error) {
	if m.HasOpenForItemFn != nil {
		return m.HasOpenForItemFn(ctx, itemID)
	}
	return false, nil
}

func (m *mockMaintenanceRepo) LastCompletedAt(ctx context.Context, itemID uint) (*time.Time, error) {
	if m.LastCompletedAtFn != nil {
		return m.LastCompletedAtFn(ctx, itemID)
	}
	return nil, nil
}

func (m *mockMaintenanceRepo) ListAll(ctx context.Context) ([]*models.MaintenanceRecord, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, nil
}

type mockRuleRepo struct {
	CreateFn     func(ctx context.Context, rule *models.MaintenanceRule) error
	GetByIDFn    func(ctx context.Context, id uint) (*models.MaintenanceRule, error)
	UpdateFn     func(ctx context.Context, rule *models.MaintenanceRule) error
	DeleteFn     func(ctx context.Context, id uint) error
	ListActiveFn func(ctx context.Context) ([]*models.MaintenanceRule, error)
	ListAllFn    func(ctx context.Context) ([]*models.MaintenanceRule, error)
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *models.MaintenanceRule) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) GetByID(ctx context.Context, id uint) (*models.MaintenanceRule, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRuleRepo) Update(ctx context.Context, rule *models.MaintenanceRule) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockRuleRepo) ListActive(ctx context.Context) ([]*models.MaintenanceRule, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockRuleRepo) ListAll(ctx context.Context) ([]*models.MaintenanceRule, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, nil
}

type mockScheduleRepo struct {
	CreateFn      func(ctx context.Context, schedule *models.MaintenanceSchedule) error
	ListFn        func(ctx context.Context, offset, limit int) ([]*models.MaintenanceSchedule, int64, error)
	HasUpcomingFn func(ctx context.Context, ruleID, itemID uint, asOf time.Time) (bool, error)
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *models.MaintenanceSchedule) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, schedule)
	}
	return nil
}

func (m *mockScheduleRepo) List(ctx context.Context, offset, limit int) ([]*models.MaintenanceSchedule, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockScheduleRepo) HasUpcoming(ctx context.Context, ruleID, itemID uint, asOf time.Time) (bool, error) {
	if m.HasUpcomingFn != nil {
		return m.HasUpcomingFn(ctx, ruleID, itemID, asOf)
	}
	return false, nil
}

type mockDamageRepo struct {
	CreateFn      func(ctx context.Context, report *models.DamageReport) error
	GetByIDFn     func(ctx context.Context, id uint) (*models.DamageReport, error)
	UpdateFn      func(ctx context.Context, report *models.DamageReport) error
	ListFn        func(ctx context.Context, filter *repositories.DamageFilter) ([]*models.DamageReport, int64, error)
	CountByItemFn func(ctx context.Context, itemID uint) (int64, error)
	ListAllFn     func(ctx context.Context) ([]*models.DamageReport, error)
}

func (m *mockDamageRepo) Create(ctx context.Context, report *models.DamageReport) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, report)
	}
	return nil
}

func (m *mockDamageRepo) GetByID(ctx context.Context, id uint) (*models.DamageReport, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDamageRepo) Update(ctx context.Context, report *models.DamageReport) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, report)
	}
	return nil
}

func (m *mockDamageRepo) List(ctx context.Context, filter *repositories.DamageFilter) ([]*models.DamageReport, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockDamageRepo) CountByItem(ctx context.Context, itemID uint) (int64, error) {
	if m.CountByItemFn != nil {
		return m.CountByItemFn(ctx, itemID)
	}
	return 0, nil
}

func (m *mockDamageRepo) ListAll(ctx context.Context) ([]*models.DamageReport, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, nil
}

type mockActivityRepo struct {
	CreateFn func(ctx context.Context, entry *models.ActivityLog) error
	ListFn   func(ctx context.Context, filter *repositories.ActivityFilter) ([]*models.ActivityLog, int64, error)
}

func (m *mockActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, filter *repositories.ActivityFilter) ([]*models.ActivityLog, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

// newTestActivity returns an activity service backed by a no-op repo
func newTestActivity() *ActivityService {
	return NewActivityService(&mockActivityRepo{})
}

// newTestNotification returns a disabled notification service
func newTestNotification() *NotificationService {
	return NewNotificationService()
}
