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

// Maintenance errors
var (
	ErrMaintenanceNotFound  = errors.New("maintenance record not found")
	ErrInvalidTransition    = errors.New("illegal maintenance status transition")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrTechnicianNotFound   = errors.New("technician not found")
	ErrMaintenanceCompleted = errors.New("maintenance record already completed")
)

// legal maintenance status transitions
var maintenanceTransitions = map[string][]string{
	models.MaintenanceStatusPending:    {models.MaintenanceStatusInProgress, models.MaintenanceStatusOnHold},
	models.MaintenanceStatusInProgress: {models.MaintenanceStatusOnHold, models.MaintenanceStatusCompleted},
	models.MaintenanceStatusOnHold:     {models.MaintenanceStatusInProgress},
	models.MaintenanceStatusCompleted:  {},
}

func transitionAllowed(from, to string) bool {
	for _, next := range maintenanceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var validPriorities = map[string]bool{
	models.MaintenancePriorityLow:      true,
	models.MaintenancePriorityMedium:   true,
	models.MaintenancePriorityHigh:     true,
	models.MaintenancePriorityCritical: true,
}

// MaintenanceService handles maintenance ticket business logic
type MaintenanceService struct {
	maintenanceRepo repositories.MaintenanceRepository
	itemRepo        repositories.ItemRepository
	userRepo        repositories.UserRepository
	activity        *ActivityService
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	maintenanceRepo repositories.MaintenanceRepository,
	itemRepo repositories.ItemRepository,
	userRepo repositories.UserRepository,
	activity *ActivityService,
) *MaintenanceService {
	return &MaintenanceService{
		maintenanceRepo: maintenanceRepo,
		itemRepo:        itemRepo,
		userRepo:        userRepo,
		activity:        activity,
	}
}

// CreateMaintenanceInput represents maintenance ticket creation input
type CreateMaintenanceInput struct {
	ItemID        uint       `json:"item_id" validate:"required"`
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	TechnicianID  *uint      `json:"technician_id,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

// ListMaintenanceInput represents maintenance listing input
type ListMaintenanceInput struct {
	Page         int
	Limit        int
	ItemID       *uint
	TechnicianID *uint
	Status       string
	Priority     string
}

// ListMaintenanceOutput represents maintenance listing output
type ListMaintenanceOutput struct {
	Records    []*models.MaintenanceRecord `json:"records"`
	Total      int64                       `json:"total"`
	Page       int                         `json:"page"`
	Limit      int                         `json:"limit"`
	TotalPages int                         `json:"total_pages"`
}

// CreateTicket opens a maintenance ticket for an item
func (s *MaintenanceService) CreateTicket(ctx context.Context, creatorID uint, input *CreateMaintenanceInput, ipAddress string) (*models.MaintenanceRecord, error) {
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

	priority := input.Priority
	if priority == "" {
		priority = models.MaintenancePriorityMedium
	}
	if !validPriorities[priority] {
		return nil, ErrInvalidPriority
	}

	if input.TechnicianID != nil {
		if _, err := s.userRepo.GetByID(ctx, *input.TechnicianID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTechnicianNotFound
			}
			return nil, err
		}
	}

	rec := &models.MaintenanceRecord{
		ItemID:        input.ItemID,
		Title:         input.Title,
		Description:   input.Description,
		Priority:      priority,
		Status:        models.MaintenanceStatusPending,
		TechnicianID:  input.TechnicianID,
		ScheduledDate: input.ScheduledDate,
		CreatedBy:     creatorID,
	}
	if err := s.maintenanceRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, creatorID, models.ActionCreate, "maintenance_record", rec.ID,
		fmt.Sprintf("opened ticket %q for item %s", rec.Title, item.Code), ipAddress)

	return rec, nil
}

// GetTicket gets a maintenance record by ID
func (s *MaintenanceService) GetTicket(ctx context.Context, id uint) (*models.MaintenanceRecord, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListTickets lists maintenance records with filters and pagination
func (s *MaintenanceService) ListTickets(ctx context.Context, input *ListMaintenanceInput) (*ListMaintenanceOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := &repositories.MaintenanceFilter{
		ItemID:       input.ItemID,
		TechnicianID: input.TechnicianID,
		Status:       input.Status,
		Priority:     input.Priority,
		Offset:       (input.Page - 1) * input.Limit,
		Limit:        input.Limit,
	}

	records, total, err := s.maintenanceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListMaintenanceOutput{
		Records:    records,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// AssignTechnician assigns or reassigns a technician to a ticket
func (s *MaintenanceService) AssignTechnician(ctx context.Context, actorID, recordID, technicianID uint, ipAddress string) (*models.MaintenanceRecord, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}
	if rec.Status == models.MaintenanceStatusCompleted {
		return nil, ErrMaintenanceCompleted
	}

	if _, err := s.userRepo.GetByID(ctx, technicianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, err
	}

	rec.TechnicianID = &technicianID
	rec.Technician = nil
	if err := s.maintenanceRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionUpdate, "maintenance_record", rec.ID,
		fmt.Sprintf("assigned technician #%d", technicianID), ipAddress)

	return rec, nil
}

// Transition moves a ticket to a new status. The transition table is
// enforced here, not trusted from the client. Starting work takes the
// item out of circulation; completing it restores availability and
// stamps the completion time.
func (s *MaintenanceService) Transition(ctx context.Context, actorID, recordID uint, newStatus string, cost *float64, ipAddress string) (*models.MaintenanceRecord, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}

	if !transitionAllowed(rec.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	oldStatus := rec.Status
	now := time.Now()
	rec.Status = newStatus

	switch newStatus {
	case models.MaintenanceStatusInProgress:
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	case models.MaintenanceStatusCompleted:
		rec.ActualCompletionAt = &now
		if cost != nil {
			rec.Cost = *cost
		}
	}

	if err := s.maintenanceRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	// Item status follows the ticket; best effort
	s.syncItemStatus(ctx, rec.ItemID, oldStatus, newStatus)

	s.activity.Record(ctx, actorID, models.ActionStatusChange, "maintenance_record", rec.ID,
		fmt.Sprintf("status %s -> %s", oldStatus, newStatus), ipAddress)

	return rec, nil
}

// syncItemStatus couples item availability to ticket progress
func (s *MaintenanceService) syncItemStatus(ctx context.Context, itemID uint, oldStatus, newStatus string) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		log.Printf("item %d lookup for maintenance status sync failed: %v", itemID, err)
		return
	}

	switch {
	case newStatus == models.MaintenanceStatusInProgress && item.Status == models.ItemStatusAvailable:
		item.Status = models.ItemStatusUnderMaintenance
	case newStatus == models.MaintenanceStatusCompleted && item.Status == models.ItemStatusUnderMaintenance:
		if item.CurrentQuantity > 0 {
			item.Status = models.ItemStatusAvailable
		} else {
			item.Status = models.ItemStatusBorrowed
		}
	default:
		return
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		log.Printf("item %d status sync after maintenance %s -> %s failed: %v", itemID, oldStatus, newStatus, err)
	}
}

// UpdateTicketInput represents mutable ticket fields
type UpdateTicketInput struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Cost          *float64   `json:"cost,omitempty"`
}

// UpdateTicket updates ticket metadata. Completed tickets are frozen.
func (s *MaintenanceService) UpdateTicket(ctx context.Context, actorID, recordID uint, input *UpdateTicketInput, ipAddress string) (*models.MaintenanceRecord, error) {
	rec, err := s.maintenanceRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}
	if rec.Status == models.MaintenanceStatusCompleted {
		return nil, ErrMaintenanceCompleted
	}

	if input.Priority != nil {
		if !validPriorities[*input.Priority] {
			return nil, ErrInvalidPriority
		}
		rec.Priority = *input.Priority
	}
	if input.Title != nil {
		rec.Title = *input.Title
	}
	if input.Description != nil {
		rec.Description = *input.Description
	}
	if input.ScheduledDate != nil {
		rec.ScheduledDate = input.ScheduledDate
	}
	if input.Cost != nil {
		rec.Cost = *input.Cost
	}

	if err := s.maintenanceRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionUpdate, "maintenance_record", rec.ID, "", ipAddress)
	return rec, nil
}
