package repositories

import (
	"context"
	"errors"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// maintenanceRepository implements MaintenanceRepository interface
type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance record repository
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// Create creates a new maintenance record
func (r *maintenanceRepository) Create(ctx context.Context, rec *models.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// GetByID gets a maintenance record by ID with relations
func (r *maintenanceRepository) GetByID(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	var rec models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Technician").
		Preload("Creator").
		Preload("Damage").
		First(&rec, id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update updates a maintenance record
func (r *maintenanceRepository) Update(ctx context.Context, rec *models.MaintenanceRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// List lists maintenance records matching the filter with pagination
func (r *maintenanceRepository) List(ctx context.Context, filter *MaintenanceFilter) ([]*models.MaintenanceRecord, int64, error) {
	var records []*models.MaintenanceRecord
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MaintenanceRecord{})

	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.TechnicianID != nil {
		query = query.Where("technician_id = ?", *filter.TechnicianID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Item").
		Preload("Technician").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&records).Error
	return records, total, err
}

// HasOpenForItem checks if the item already has a non-completed record
func (r *maintenanceRepository) HasOpenForItem(ctx context.Context, itemID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceRecord{}).
		Where("item_id = ? AND status <> ?", itemID, models.MaintenanceStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// LastCompletedAt returns the most recent completion time for an item,
// or nil if the item has never been maintained.
func (r *maintenanceRepository) LastCompletedAt(ctx context.Context, itemID uint) (*time.Time, error) {
	var rec models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND status = ? AND actual_completion_at IS NOT NULL",
			itemID, models.MaintenanceStatusCompleted).
		Order("actual_completion_at DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.ActualCompletionAt, nil
}

// ListAll lists all maintenance records with relations (report export)
func (r *maintenanceRepository) ListAll(ctx context.Context) ([]*models.MaintenanceRecord, error) {
	var records []*models.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Technician").
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// maintenanceRuleRepository implements MaintenanceRuleRepository interface
type maintenanceRuleRepository struct {
	db *gorm.DB
}

// NewMaintenanceRuleRepository creates a new maintenance rule repository
func NewMaintenanceRuleRepository(db *gorm.DB) MaintenanceRuleRepository {
	return &maintenanceRuleRepository{db: db}
}

// Create creates a new maintenance rule
func (r *maintenanceRuleRepository) Create(ctx context.Context, rule *models.MaintenanceRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// GetByID gets a maintenance rule by ID
func (r *maintenanceRuleRepository) GetByID(ctx context.Context, id uint) (*models.MaintenanceRule, error) {
	var rule models.MaintenanceRule
	err := r.db.WithContext(ctx).Preload("Category").First(&rule, id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Update updates a maintenance rule
func (r *maintenanceRuleRepository) Update(ctx context.Context, rule *models.MaintenanceRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete soft deletes a maintenance rule
func (r *maintenanceRuleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MaintenanceRule{}, id).Error
}

// ListActive lists active maintenance rules
func (r *maintenanceRuleRepository) ListActive(ctx context.Context) ([]*models.MaintenanceRule, error) {
	var rules []*models.MaintenanceRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&rules).Error
	return rules, err
}

// ListAll lists all maintenance rules including inactive
func (r *maintenanceRuleRepository) ListAll(ctx context.Context) ([]*models.MaintenanceRule, error) {
	var rules []*models.MaintenanceRule
	err := r.db.WithContext(ctx).Preload("Category").Find(&rules).Error
	return rules, err
}

// maintenanceScheduleRepository implements MaintenanceScheduleRepository interface
type maintenanceScheduleRepository struct {
	db *gorm.DB
}

// NewMaintenanceScheduleRepository creates a new maintenance schedule repository
func NewMaintenanceScheduleRepository(db *gorm.DB) MaintenanceScheduleRepository {
	return &maintenanceScheduleRepository{db: db}
}

// Create creates a new schedule entry
func (r *maintenanceScheduleRepository) Create(ctx context.Context, schedule *models.MaintenanceSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// List lists schedule entries with pagination
func (r *maintenanceScheduleRepository) List(ctx context.Context, offset, limit int) ([]*models.MaintenanceSchedule, int64, error) {
	var schedules []*models.MaintenanceSchedule
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.MaintenanceSchedule{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Rule").
		Order("due_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&schedules).Error
	return schedules, total, err
}

// HasUpcoming checks if the rule already scheduled the item and the entry is not past due
func (r *maintenanceScheduleRepository) HasUpcoming(ctx context.Context, ruleID, itemID uint, asOf time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MaintenanceSchedule{}).
		Where("rule_id = ? AND item_id = ? AND due_date >= ?", ruleID, itemID, asOf).
		Count(&count).Error
	return count > 0, err
}
