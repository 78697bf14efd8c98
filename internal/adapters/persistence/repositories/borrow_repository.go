package repositories

import (
	"context"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// borrowRepository implements BorrowRepository interface
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository creates a new borrow request repository
func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

// Create creates a new borrow request
func (r *borrowRepository) Create(ctx context.Context, req *models.BorrowRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetByID gets a borrow request by ID with relations
func (r *borrowRepository) GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Borrower").
		Preload("Approver").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update updates a borrow request
func (r *borrowRepository) Update(ctx context.Context, req *models.BorrowRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// List lists borrow requests matching the filter with pagination
func (r *borrowRepository) List(ctx context.Context, filter *BorrowFilter) ([]*models.BorrowRequest, int64, error) {
	var requests []*models.BorrowRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.BorrowRequest{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Item").
		Preload("Borrower").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&requests).Error
	return requests, total, err
}

// CountByItem counts borrow requests for an item in the given statuses
func (r *borrowRepository) CountByItem(ctx context.Context, itemID uint, statuses []string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.BorrowRequest{}).
		Where("item_id = ?", itemID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListOverdue lists approved borrow requests whose due date has passed
func (r *borrowRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowRequest, error) {
	var requests []*models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Borrower").
		Where("status = ? AND due_date < ?", models.BorrowStatusApproved, asOf).
		Order("due_date ASC").
		Find(&requests).Error
	return requests, err
}

// ListAll lists all borrow requests with relations (report export)
func (r *borrowRepository) ListAll(ctx context.Context) ([]*models.BorrowRequest, error) {
	var requests []*models.BorrowRequest
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Borrower").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// returnRepository implements ReturnRepository interface
type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository creates a new return request repository
func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepository{db: db}
}

// Create creates a new return request
func (r *returnRepository) Create(ctx context.Context, req *models.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// GetByID gets a return request by ID with relations
func (r *returnRepository) GetByID(ctx context.Context, id uint) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	err := r.db.WithContext(ctx).
		Preload("BorrowRequest").
		Preload("Item").
		Preload("Returner").
		Preload("Verifier").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update updates a return request
func (r *returnRepository) Update(ctx context.Context, req *models.ReturnRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// List lists return requests matching the filter with pagination
func (r *returnRepository) List(ctx context.Context, filter *ReturnFilter) ([]*models.ReturnRequest, int64, error) {
	var requests []*models.ReturnRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ReturnRequest{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("BorrowRequest").
		Preload("Item").
		Preload("Returner").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&requests).Error
	return requests, total, err
}
