package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Borrow workflow errors
var (
	ErrBorrowNotFound     = errors.New("borrow request not found")
	ErrReturnNotFound     = errors.New("return request not found")
	ErrItemNotBorrowable  = errors.New("item is not borrowable")
	ErrQuantityExceedsCap = errors.New("quantity exceeds borrowable cap")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidDateRange   = errors.New("due date must be after start date")
	ErrNotRequestOwner    = errors.New("not the owner of this request")
	ErrNotPending         = errors.New("request is not pending")
	ErrBorrowNotApproved  = errors.New("borrow request is not approved")
	ErrReasonRequired     = errors.New("reason is required")
	ErrReturnQtyExceeds   = errors.New("return quantity exceeds borrowed quantity")
	ErrInvalidCondition   = errors.New("invalid returned item condition")
)

// MaxBorrowable returns the per-request borrow cap for an item with the
// given current stock: half the stock rounded down, never below one.
func MaxBorrowable(currentQuantity int) int {
	limit := currentQuantity / 2
	if limit < 1 {
		limit = 1
	}
	return limit
}

// BorrowService handles the borrow and return workflow
type BorrowService struct {
	borrowRepo   repositories.BorrowRepository
	returnRepo   repositories.ReturnRepository
	itemRepo     repositories.ItemRepository
	userRepo     repositories.UserRepository
	damageRepo   repositories.DamageReportRepository
	activity     *ActivityService
	notification *NotificationService
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	borrowRepo repositories.BorrowRepository,
	returnRepo repositories.ReturnRepository,
	itemRepo repositories.ItemRepository,
	userRepo repositories.UserRepository,
	damageRepo repositories.DamageReportRepository,
	activity *ActivityService,
	notification *NotificationService,
) *BorrowService {
	return &BorrowService{
		borrowRepo:   borrowRepo,
		returnRepo:   returnRepo,
		itemRepo:     itemRepo,
		userRepo:     userRepo,
		damageRepo:   damageRepo,
		activity:     activity,
		notification: notification,
	}
}

// CreateBorrowInput represents borrow request creation input
type CreateBorrowInput struct {
	ItemID    uint      `json:"item_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Purpose   string    `json:"purpose,omitempty"`
	StartDate time.Time `json:"start_date" validate:"required"`
	DueDate   time.Time `json:"due_date" validate:"required"`
}

// SubmitReturnInput represents return submission input
type SubmitReturnInput struct {
	BorrowRequestID uint   `json:"borrow_request_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,min=1"`
	ItemCondition   string `json:"item_condition" validate:"required"`
	Notes           string `json:"notes,omitempty"`
}

// ListBorrowsInput represents borrow listing input
type ListBorrowsInput struct {
	Page   int
	Limit  int
	UserID *uint
	ItemID *uint
	Status string
}

// ListBorrowsOutput represents borrow listing output
type ListBorrowsOutput struct {
	Requests   []*models.BorrowRequestResponse `json:"requests"`
	Total      int64                           `json:"total"`
	Page       int                             `json:"page"`
	Limit      int                             `json:"limit"`
	TotalPages int                             `json:"total_pages"`
}

// CreateBorrow submits a new borrow request
func (s *BorrowService) CreateBorrow(ctx context.Context, userID uint, input *CreateBorrowInput, ipAddress string) (*models.BorrowRequestResponse, error) {
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !input.DueDate.After(input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	item, err := s.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Status == models.ItemStatusArchived {
		return nil, ErrItemArchived
	}
	if !item.IsBorrowable {
		return nil, ErrItemNotBorrowable
	}

	if input.Quantity > MaxBorrowable(item.CurrentQuantity) {
		return nil, ErrQuantityExceedsCap
	}
	if input.Quantity > item.CurrentQuantity {
		return nil, ErrInsufficientStock
	}

	req := &models.BorrowRequest{
		ItemID:    input.ItemID,
		UserID:    userID,
		Quantity:  input.Quantity,
		Status:    models.BorrowStatusPending,
		Purpose:   input.Purpose,
		StartDate: input.StartDate,
		DueDate:   input.DueDate,
	}
	if err := s.borrowRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, models.ActionCreate, "borrow_request", req.ID,
		fmt.Sprintf("requested %d x item #%d", req.Quantity, req.ItemID), ipAddress)

	req.Item = item
	return req.ToResponse(), nil
}

// GetBorrow gets a borrow request. Non-staff callers can only read
// their own requests.
func (s *BorrowService) GetBorrow(ctx context.Context, id uint, callerID uint, callerCanManage bool) (*models.BorrowRequestResponse, error) {
	req, err := s.borrowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, err
	}
	if !callerCanManage && req.UserID != callerID {
		return nil, ErrNotRequestOwner
	}
	return req.ToResponse(), nil
}

// ListBorrows lists borrow requests with filters and pagination
func (s *BorrowService) ListBorrows(ctx context.Context, input *ListBorrowsInput) (*ListBorrowsOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := &repositories.BorrowFilter{
		UserID: input.UserID,
		ItemID: input.ItemID,
		Status: input.Status,
		Offset: (input.Page - 1) * input.Limit,
		Limit:  input.Limit,
	}

	requests, total, err := s.borrowRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.BorrowRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, r.ToResponse())
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListBorrowsOutput{
		Requests:   responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// ApproveBorrow approves a pending borrow request and allocates stock.
// The stock decrement happens at approval time, not request time.
func (s *BorrowService) ApproveBorrow(ctx context.Context, approverID, requestID uint, ipAddress string) (*models.BorrowRequestResponse, error) {
	req, err := s.borrowRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, err
	}
	if req.Status != models.BorrowStatusPending {
		return nil, ErrNotPending
	}

	item, err := s.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status == models.ItemStatusArchived {
		return nil, ErrItemArchived
	}
	if req.Quantity > item.CurrentQuantity {
		return nil, ErrInsufficientStock
	}

	now := time.Now()
	req.Status = models.BorrowStatusApproved
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	// Secondary writes after the approval commit are best effort
	item.CurrentQuantity -= req.Quantity
	if item.CurrentQuantity == 0 && item.Status == models.ItemStatusAvailable {
		item.Status = models.ItemStatusBorrowed
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		log.Printf("stock decrement for item %d after approving borrow %d failed: %v", item.ID, req.ID, err)
	}

	s.activity.Record(ctx, approverID, models.ActionApprove, "borrow_request", req.ID,
		fmt.Sprintf("approved %d x %s", req.Quantity, item.Code), ipAddress)

	req.Item = item
	if borrower, err := s.userRepo.GetByID(ctx, req.UserID); err == nil {
		s.notification.NotifyBorrowApproved(req, borrower)
	}

	return req.ToResponse(), nil
}

// RejectBorrow rejects a pending borrow request. A reason is mandatory.
func (s *BorrowService) RejectBorrow(ctx context.Context, approverID, requestID uint, reason, ipAddress string) (*models.BorrowRequestResponse, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	req, err := s.borrowRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, err
	}
	if req.Status != models.BorrowStatusPending {
		return nil, ErrNotPending
	}

	now := time.Now()
	req.Status = models.BorrowStatusRejected
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	req.RejectReason = reason
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, approverID, models.ActionReject, "borrow_request", req.ID, reason, ipAddress)

	if borrower, err := s.userRepo.GetByID(ctx, req.UserID); err == nil {
		s.notification.NotifyBorrowRejected(req, borrower, reason)
	}

	return req.ToResponse(), nil
}

// ============================================================
// Returns
// ============================================================

var validReturnConditions = map[string]bool{
	models.ReturnConditionGood:         true,
	models.ReturnConditionMinorWear:    true,
	models.ReturnConditionDamaged:      true,
	models.ReturnConditionMissingParts: true,
	models.ReturnConditionLost:         true,
}

// SubmitReturn submits a return for an approved borrow
func (s *BorrowService) SubmitReturn(ctx context.Context, userID uint, input *SubmitReturnInput, ipAddress string) (*models.ReturnRequest, error) {
	if !validReturnConditions[input.ItemCondition] {
		return nil, ErrInvalidCondition
	}

	borrow, err := s.borrowRepo.GetByID(ctx, input.BorrowRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, err
	}
	if borrow.UserID != userID {
		return nil, ErrNotRequestOwner
	}
	if borrow.Status != models.BorrowStatusApproved {
		return nil, ErrBorrowNotApproved
	}
	if input.Quantity < 1 || input.Quantity > borrow.Quantity {
		return nil, ErrReturnQtyExceeds
	}

	ret := &models.ReturnRequest{
		BorrowRequestID: borrow.ID,
		ItemID:          borrow.ItemID,
		UserID:          userID,
		Quantity:        input.Quantity,
		ItemCondition:   input.ItemCondition,
		Status:          models.ReturnStatusPending,
		Notes:           input.Notes,
	}
	if err := s.returnRepo.Create(ctx, ret); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, models.ActionReturnSubmit, "return_request", ret.ID,
		fmt.Sprintf("returned %d x item #%d condition %s", ret.Quantity, ret.ItemID, ret.ItemCondition), ipAddress)

	return ret, nil
}

// ListReturns lists return requests with pagination
func (s *BorrowService) ListReturns(ctx context.Context, userID *uint, status string, page, limit int) ([]*models.ReturnRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	filter := &repositories.ReturnFilter{
		UserID: userID,
		Status: status,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	return s.returnRepo.List(ctx, filter)
}

// AcceptReturn verifies a pending return. The acceptance is committed
// first; stock restoration and parent closure follow as best-effort
// writes so a partial failure never undoes the verification.
func (s *BorrowService) AcceptReturn(ctx context.Context, verifierID, returnID uint, ipAddress string) (*models.ReturnRequest, error) {
	ret, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReturnNotFound
		}
		return nil, err
	}
	if ret.Status != models.ReturnStatusPending {
		return nil, ErrNotPending
	}

	now := time.Now()
	ret.Status = models.ReturnStatusAccepted
	ret.VerifiedBy = &verifierID
	ret.VerifiedAt = &now
	if err := s.returnRepo.Update(ctx, ret); err != nil {
		return nil, err
	}

	// Update stock. Lost units are written off the total instead of
	// restored; either way the item leaves borrowed status because the
	// parent borrow is closed below.
	if item, err := s.itemRepo.GetByID(ctx, ret.ItemID); err != nil {
		log.Printf("stock update lookup for item %d after return %d failed: %v", ret.ItemID, ret.ID, err)
	} else {
		if ret.ItemCondition == models.ReturnConditionLost {
			item.TotalQuantity -= ret.Quantity
			if item.TotalQuantity < 0 {
				item.TotalQuantity = 0
			}
		} else {
			item.CurrentQuantity += ret.Quantity
		}
		if item.Status == models.ItemStatusBorrowed {
			item.Status = models.ItemStatusAvailable
		}
		if err := s.itemRepo.Update(ctx, item); err != nil {
			log.Printf("stock update for item %d after return %d failed: %v", item.ID, ret.ID, err)
		}
	}

	// Close the parent borrow
	if borrow, err := s.borrowRepo.GetByID(ctx, ret.BorrowRequestID); err != nil {
		log.Printf("parent borrow %d lookup after return %d failed: %v", ret.BorrowRequestID, ret.ID, err)
	} else {
		borrow.Status = models.BorrowStatusReturned
		borrow.ActualReturnAt = &now
		if err := s.borrowRepo.Update(ctx, borrow); err != nil {
			log.Printf("closing borrow %d after return %d failed: %v", borrow.ID, ret.ID, err)
		}
		s.notification.NotifyReturnVerified(ret, borrow.Borrower, true)
	}

	// Damaged or incomplete returns open a damage report automatically
	if ret.ItemCondition == models.ReturnConditionDamaged || ret.ItemCondition == models.ReturnConditionMissingParts {
		report := &models.DamageReport{
			ItemID:      ret.ItemID,
			ReporterID:  verifierID,
			Severity:    models.DamageSeverityModerate,
			Description: fmt.Sprintf("filed from return request #%d: condition %s. %s", ret.ID, ret.ItemCondition, ret.Notes),
			Status:      models.DamageStatusPending,
		}
		if err := s.damageRepo.Create(ctx, report); err != nil {
			log.Printf("auto damage report for return %d failed: %v", ret.ID, err)
		}
	}

	s.activity.Record(ctx, verifierID, models.ActionReturnAccept, "return_request", ret.ID,
		fmt.Sprintf("accepted return of %d x item #%d", ret.Quantity, ret.ItemID), ipAddress)

	return ret, nil
}

// RejectReturn rejects a pending return. The parent borrow stays
// approved so the borrower can resubmit.
func (s *BorrowService) RejectReturn(ctx context.Context, verifierID, returnID uint, reason, ipAddress string) (*models.ReturnRequest, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	ret, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReturnNotFound
		}
		return nil, err
	}
	if ret.Status != models.ReturnStatusPending {
		return nil, ErrNotPending
	}

	now := time.Now()
	ret.Status = models.ReturnStatusRejected
	ret.VerifiedBy = &verifierID
	ret.VerifiedAt = &now
	ret.RejectReason = reason
	if err := s.returnRepo.Update(ctx, ret); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, verifierID, models.ActionReturnReject, "return_request", ret.ID, reason, ipAddress)

	if returner, err := s.userRepo.GetByID(ctx, ret.UserID); err == nil {
		s.notification.NotifyReturnVerified(ret, returner, false)
	}

	return ret, nil
}

// ListOverdue lists approved borrows past their due date
func (s *BorrowService) ListOverdue(ctx context.Context) ([]*models.BorrowRequest, error) {
	return s.borrowRepo.ListOverdue(ctx, time.Now())
}
