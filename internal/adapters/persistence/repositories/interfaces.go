package repositories

import (
	"context"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// CategoryRepository defines category repository interface
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

// ItemFilter narrows item listings
type ItemFilter struct {
	CategoryID *uint
	Status     string
	Condition  string
	Search     string
	Borrowable *bool
	Offset     int
	Limit      int
}

// ItemRepository defines item repository interface
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	GetByCode(ctx context.Context, code string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter *ItemFilter) ([]*models.Item, int64, error)
	// ListForEvaluation returns non-archived items, optionally scoped to a category.
	ListForEvaluation(ctx context.Context, categoryID *uint) ([]*models.Item, error)
}

// BorrowFilter narrows borrow request listings
type BorrowFilter struct {
	UserID *uint
	ItemID *uint
	Status string
	Offset int
	Limit  int
}

// BorrowRepository defines borrow request repository interface
type BorrowRepository interface {
	Create(ctx context.Context, req *models.BorrowRequest) error
	GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error)
	Update(ctx context.Context, req *models.BorrowRequest) error
	List(ctx context.Context, filter *BorrowFilter) ([]*models.BorrowRequest, int64, error)
	CountByItem(ctx context.Context, itemID uint, statuses []string) (int64, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowRequest, error)
	ListAll(ctx context.Context) ([]*models.BorrowRequest, error)
}

// ReturnFilter narrows return request listings
type ReturnFilter struct {
	UserID *uint
	Status string
	Offset int
	Limit  int
}

// ReturnRepository defines return request repository interface
type ReturnRepository interface {
	Create(ctx context.Context, req *models.ReturnRequest) error
	GetByID(ctx context.Context, id uint) (*models.ReturnRequest, error)
	Update(ctx context.Context, req *models.ReturnRequest) error
	List(ctx context.Context, filter *ReturnFilter) ([]*models.ReturnRequest, int64, error)
}

// MaintenanceFilter narrows maintenance record listings
type MaintenanceFilter struct {
	ItemID       *uint
	TechnicianID *uint
	Status       string
	Priority     string
	Offset       int
	Limit        int
}

// MaintenanceRepository defines maintenance record repository interface
type MaintenanceRepository interface {
	Create(ctx context.Context, rec *models.MaintenanceRecord) error
	GetByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error)
	Update(ctx context.Context, rec *models.MaintenanceRecord) error
	List(ctx context.Context, filter *MaintenanceFilter) ([]*models.MaintenanceRecord, int64, error)
	HasOpenForItem(ctx context.Context, itemID uint) (bool, error)
	LastCompletedAt(ctx context.Context, itemID uint) (*time.Time, error)
	ListAll(ctx context.Context) ([]*models.MaintenanceRecord, error)
}

// MaintenanceRuleRepository defines maintenance rule repository interface
type MaintenanceRuleRepository interface {
	Create(ctx context.Context, rule *models.MaintenanceRule) error
	GetByID(ctx context.Context, id uint) (*models.MaintenanceRule, error)
	Update(ctx context.Context, rule *models.MaintenanceRule) error
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context) ([]*models.MaintenanceRule, error)
	ListAll(ctx context.Context) ([]*models.MaintenanceRule, error)
}

// MaintenanceScheduleRepository defines maintenance schedule repository interface
type MaintenanceScheduleRepository interface {
	Create(ctx context.Context, schedule *models.MaintenanceSchedule) error
	List(ctx context.Context, offset, limit int) ([]*models.MaintenanceSchedule, int64, error)
	// HasUpcoming reports whether the rule already produced a schedule entry
	// for the item that is not yet past due.
	HasUpcoming(ctx context.Context, ruleID, itemID uint, asOf time.Time) (bool, error)
}

// DamageFilter narrows damage report listings
type DamageFilter struct {
	ItemID     *uint
	ReporterID *uint
	Status     string
	Severity   string
	Offset     int
	Limit      int
}

// DamageReportRepository defines damage report repository interface
type DamageReportRepository interface {
	Create(ctx context.Context, report *models.DamageReport) error
	GetByID(ctx context.Context, id uint) (*models.DamageReport, error)
	Update(ctx context.Context, report *models.DamageReport) error
	List(ctx context.Context, filter *DamageFilter) ([]*models.DamageReport, int64, error)
	CountByItem(ctx context.Context, itemID uint) (int64, error)
	ListAll(ctx context.Context) ([]*models.DamageReport, error)
}

// ActivityFilter narrows activity log listings
type ActivityFilter struct {
	UserID     *uint
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

// ActivityLogRepository defines activity log repository interface.
// The table is append-only; there is no update or delete.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter *ActivityFilter) ([]*models.ActivityLog, int64, error)
}
