package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	FullName   string         `gorm:"size:100" json:"full_name"`
	Department string         `gorm:"size:100" json:"department"`
	Role       string         `gorm:"size:20;default:'STUDENT'" json:"role"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Department: u.Department,
		Role:       u.Role,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Category groups items (electronics, glassware, tools, ...)
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// ============================================================
// Inventory Tables
// ============================================================

// Item statuses
const (
	ItemStatusAvailable        = "available"
	ItemStatusBorrowed         = "borrowed"
	ItemStatusUnderMaintenance = "under_maintenance"
	ItemStatusArchived         = "archived"
)

// Item conditions
const (
	ItemConditionExcellent = "excellent"
	ItemConditionGood      = "good"
	ItemConditionFair      = "fair"
	ItemConditionPoor      = "poor"
)

// Item represents items table (equipment catalog)
type Item struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`
	CurrentQuantity int            `gorm:"not null;default:0" json:"current_quantity"`
	TotalQuantity   int            `gorm:"not null;default:0" json:"total_quantity"`
	Status          string         `gorm:"size:30;not null;default:'available'" json:"status"`
	IsBorrowable    bool           `gorm:"default:true" json:"is_borrowable"`
	Condition       string         `gorm:"size:20;not null;default:'good'" json:"condition"`
	Location        string         `gorm:"size:100" json:"location"`
	AcquiredAt      time.Time      `gorm:"type:date" json:"acquired_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

// ItemResponse DTO
type ItemResponse struct {
	ID              uint      `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	CategoryID      uint      `json:"category_id"`
	CategoryName    string    `json:"category_name,omitempty"`
	CurrentQuantity int       `json:"current_quantity"`
	TotalQuantity   int       `json:"total_quantity"`
	Status          string    `json:"status"`
	IsBorrowable    bool      `json:"is_borrowable"`
	Condition       string    `json:"condition"`
	Location        string    `json:"location"`
	AcquiredAt      time.Time `json:"acquired_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (i *Item) ToResponse() *ItemResponse {
	resp := &ItemResponse{
		ID:              i.ID,
		Code:            i.Code,
		Name:            i.Name,
		Description:     i.Description,
		CategoryID:      i.CategoryID,
		CurrentQuantity: i.CurrentQuantity,
		TotalQuantity:   i.TotalQuantity,
		Status:          i.Status,
		IsBorrowable:    i.IsBorrowable,
		Condition:       i.Condition,
		Location:        i.Location,
		AcquiredAt:      i.AcquiredAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if i.Category != nil {
		resp.CategoryName = i.Category.Name
	}
	return resp
}

// ============================================================
// Borrow Workflow Tables
// ============================================================

// Borrow request statuses
const (
	BorrowStatusPending  = "pending"
	BorrowStatusApproved = "approved"
	BorrowStatusRejected = "rejected"
	BorrowStatusReturned = "returned"
)

// BorrowRequest represents borrow_requests table
type BorrowRequest struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ItemID         uint           `gorm:"not null;index" json:"item_id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	Status         string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Purpose        string         `gorm:"type:text" json:"purpose"`
	StartDate      time.Time      `gorm:"type:date;not null" json:"start_date"`
	DueDate        time.Time      `gorm:"type:date;not null" json:"due_date"`
	ApprovedBy     *uint          `json:"approved_by"`
	ApprovedAt     *time.Time     `json:"approved_at"`
	RejectReason   string         `gorm:"type:text" json:"reject_reason"`
	ActualReturnAt *time.Time     `json:"actual_return_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Item     *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Borrower *User `gorm:"foreignKey:UserID" json:"borrower,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (BorrowRequest) TableName() string {
	return "borrow_requests"
}

// BorrowRequestResponse DTO
type BorrowRequestResponse struct {
	ID             uint       `json:"id"`
	ItemID         uint       `json:"item_id"`
	ItemCode       string     `json:"item_code,omitempty"`
	ItemName       string     `json:"item_name,omitempty"`
	UserID         uint       `json:"user_id"`
	BorrowerName   string     `json:"borrower_name,omitempty"`
	Quantity       int        `json:"quantity"`
	Status         string     `json:"status"`
	Purpose        string     `json:"purpose"`
	StartDate      time.Time  `json:"start_date"`
	DueDate        time.Time  `json:"due_date"`
	ApprovedBy     *uint      `json:"approved_by"`
	ApprovedAt     *time.Time `json:"approved_at"`
	RejectReason   string     `json:"reject_reason,omitempty"`
	ActualReturnAt *time.Time `json:"actual_return_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (b *BorrowRequest) ToResponse() *BorrowRequestResponse {
	resp := &BorrowRequestResponse{
		ID:             b.ID,
		ItemID:         b.ItemID,
		UserID:         b.UserID,
		Quantity:       b.Quantity,
		Status:         b.Status,
		Purpose:        b.Purpose,
		StartDate:      b.StartDate,
		DueDate:        b.DueDate,
		ApprovedBy:     b.ApprovedBy,
		ApprovedAt:     b.ApprovedAt,
		RejectReason:   b.RejectReason,
		ActualReturnAt: b.ActualReturnAt,
		CreatedAt:      b.CreatedAt,
	}
	if b.Item != nil {
		resp.ItemCode = b.Item.Code
		resp.ItemName = b.Item.Name
	}
	if b.Borrower != nil {
		resp.BorrowerName = b.Borrower.FullName
	}
	return resp
}

// Return request statuses
const (
	ReturnStatusPending  = "pending"
	ReturnStatusAccepted = "accepted"
	ReturnStatusRejected = "rejected"
)

// Returned item conditions
const (
	ReturnConditionGood         = "good"
	ReturnConditionMinorWear    = "minor_wear"
	ReturnConditionDamaged      = "damaged"
	ReturnConditionMissingParts = "missing_parts"
	ReturnConditionLost         = "lost"
)

// ReturnRequest represents return_requests table
type ReturnRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	BorrowRequestID uint           `gorm:"not null;index" json:"borrow_request_id"`
	ItemID          uint           `gorm:"not null;index" json:"item_id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Quantity        int            `gorm:"not null" json:"quantity"`
	ItemCondition   string         `gorm:"size:20;not null;default:'good'" json:"item_condition"`
	Status          string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes"`
	VerifiedBy      *uint          `json:"verified_by"`
	VerifiedAt      *time.Time     `json:"verified_at"`
	RejectReason    string         `gorm:"type:text" json:"reject_reason"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	BorrowRequest *BorrowRequest `gorm:"foreignKey:BorrowRequestID" json:"borrow_request,omitempty"`
	Item          *Item          `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Returner      *User          `gorm:"foreignKey:UserID" json:"returner,omitempty"`
	Verifier      *User          `gorm:"foreignKey:VerifiedBy" json:"verifier,omitempty"`
}

func (ReturnRequest) TableName() string {
	return "return_requests"
}

// ============================================================
// Maintenance Tables
// ============================================================

// Maintenance record statuses
const (
	MaintenanceStatusPending    = "pending"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusOnHold     = "on_hold"
	MaintenanceStatusCompleted  = "completed"
)

// Maintenance priorities
const (
	MaintenancePriorityLow      = "low"
	MaintenancePriorityMedium   = "medium"
	MaintenancePriorityHigh     = "high"
	MaintenancePriorityCritical = "critical"
)

// MaintenanceRecord represents maintenance_records table
type MaintenanceRecord struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	ItemID             uint           `gorm:"not null;index" json:"item_id"`
	DamageReportID     *uint          `gorm:"index" json:"damage_report_id"`
	Title              string         `gorm:"size:200;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	Priority           string         `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Status             string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	TechnicianID       *uint          `json:"technician_id"`
	ScheduledDate      *time.Time     `gorm:"type:date" json:"scheduled_date"`
	StartedAt          *time.Time     `json:"started_at"`
	ActualCompletionAt *time.Time     `json:"actual_completion_at"`
	Cost               float64        `gorm:"type:decimal(12,2);default:0" json:"cost"`
	CreatedBy          uint           `gorm:"not null" json:"created_by"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Item       *Item         `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Technician *User         `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Creator    *User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Damage     *DamageReport `gorm:"foreignKey:DamageReportID" json:"damage_report,omitempty"`
}

func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

// MaintenanceSchedule represents maintenance_schedules table.
// Rows are produced by predictive rule evaluation.
type MaintenanceSchedule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    uint      `gorm:"not null;index" json:"item_id"`
	RuleID    uint      `gorm:"not null;index" json:"rule_id"`
	DueDate   time.Time `gorm:"type:date;not null" json:"due_date"`
	Reason    string    `gorm:"type:text" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Item *Item            `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Rule *MaintenanceRule `gorm:"foreignKey:RuleID" json:"rule,omitempty"`
}

func (MaintenanceSchedule) TableName() string {
	return "maintenance_schedules"
}

// Rule condition types
const (
	RuleConditionBorrowCount          = "borrow_count"
	RuleConditionDaysSinceMaintenance = "days_since_maintenance"
	RuleConditionAgeDays              = "age_days"
	RuleConditionDamageReports        = "damage_reports"
)

// MaintenanceRule represents maintenance_rules table
type MaintenanceRule struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	ConditionType    string         `gorm:"size:30;not null" json:"condition_type"`
	ThresholdValue   int            `gorm:"not null" json:"threshold_value"`
	CategoryID       *uint          `gorm:"index" json:"category_id"`
	Priority         string         `gorm:"size:20;not null;default:'medium'" json:"priority"`
	AutoCreateTicket bool           `gorm:"default:false" json:"auto_create_ticket"`
	IsActive         bool           `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (MaintenanceRule) TableName() string {
	return "maintenance_rules"
}

// ============================================================
// Damage Report Tables
// ============================================================

// Damage report severities
const (
	DamageSeverityMinor    = "minor"
	DamageSeverityModerate = "moderate"
	DamageSeveritySevere   = "severe"
)

// Damage report statuses
const (
	DamageStatusPending              = "pending"
	DamageStatusReviewing            = "reviewing"
	DamageStatusResolved             = "resolved"
	DamageStatusRejected             = "rejected"
	DamageStatusMaintenanceScheduled = "maintenance_scheduled"
)

// DamageReport represents damage_reports table
type DamageReport struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ItemID          uint           `gorm:"not null;index" json:"item_id"`
	ReporterID      uint           `gorm:"not null;index" json:"reporter_id"`
	Severity        string         `gorm:"size:20;not null;default:'minor'" json:"severity"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Status          string         `gorm:"size:30;not null;default:'pending';index" json:"status"`
	ResolvedBy      *uint          `json:"resolved_by"`
	ResolvedAt      *time.Time     `json:"resolved_at"`
	ResolutionNotes string         `gorm:"type:text" json:"resolution_notes"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Item     *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Reporter *User `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Resolver *User `gorm:"foreignKey:ResolvedBy" json:"resolver,omitempty"`
}

func (DamageReport) TableName() string {
	return "damage_reports"
}

// ============================================================
// Audit Table
// ============================================================

// Activity actions
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionApprove      = "APPROVE"
	ActionReject       = "REJECT"
	ActionReturnSubmit = "RETURN_SUBMIT"
	ActionReturnAccept = "RETURN_ACCEPT"
	ActionReturnReject = "RETURN_REJECT"
	ActionStatusChange = "STATUS_CHANGE"
	ActionRoleChange   = "ROLE_CHANGE"
	ActionLogin        = "LOGIN"
	ActionRuleCheck    = "RULE_CHECK"
	ActionExport       = "EXPORT"
)

// ActivityLog represents activity_logs table (append-only)
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Action     string    `gorm:"size:50;not null;index" json:"action"`
	EntityType string    `gorm:"size:50;not null;index" json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	IPAddress  string    `gorm:"size:50" json:"ip_address"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// Relations
	Actor *User `gorm:"foreignKey:UserID" json:"actor,omitempty"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Master
		&Category{},
		&MaintenanceRule{},
		// Inventory
		&Item{},
		// Borrow workflow
		&BorrowRequest{},
		&ReturnRequest{},
		// Maintenance
		&MaintenanceRecord{},
		&MaintenanceSchedule{},
		// Damage
		&DamageReport{},
		// Audit
		&ActivityLog{},
	)
}
