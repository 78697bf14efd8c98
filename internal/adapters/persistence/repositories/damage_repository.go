package repositories

import (
	"context"

	"lablink-inventory/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// damageReportRepository implements DamageReportRepository interface
type damageReportRepository struct {
	db *gorm.DB
}

// NewDamageReportRepository creates a new damage report repository
func NewDamageReportRepository(db *gorm.DB) DamageReportRepository {
	return &damageReportRepository{db: db}
}

// Create creates a new damage report
func (r *damageReportRepository) Create(ctx context.Context, report *models.DamageReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// GetByID gets a damage report by ID with relations
func (r *damageReportRepository) GetByID(ctx context.Context, id uint) (*models.DamageReport, error) {
	var report models.DamageReport
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Reporter").
		Preload("Resolver").
		First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Update updates a damage report
func (r *damageReportRepository) Update(ctx context.Context, report *models.DamageReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// List lists damage reports matching the filter with pagination
func (r *damageReportRepository) List(ctx context.Context, filter *DamageFilter) ([]*models.DamageReport, int64, error) {
	var reports []*models.DamageReport
	var total int64

	query := r.db.WithContext(ctx).Model(&models.DamageReport{})

	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.ReporterID != nil {
		query = query.Where("reporter_id = ?", *filter.ReporterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Item").
		Preload("Reporter").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&reports).Error
	return reports, total, err
}

// CountByItem counts damage reports filed against an item
func (r *damageReportRepository) CountByItem(ctx context.Context, itemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DamageReport{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

// ListAll lists all damage reports with relations (report export)
func (r *damageReportRepository) ListAll(ctx context.Context) ([]*models.DamageReport, error) {
	var reports []*models.DamageReport
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Reporter").
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}
