package services

import (
	"context"
	"log"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"
)

// ActivityService handles the append-only audit trail
type ActivityService struct {
	activityRepo repositories.ActivityLogRepository
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repositories.ActivityLogRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Record appends an audit entry. Failures are logged and swallowed so a
// broken audit write never fails the primary operation.
func (s *ActivityService) Record(ctx context.Context, userID uint, action, entityType string, entityID uint, detail, ipAddress string) {
	entry := &models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		IPAddress:  ipAddress,
	}
	if userID != 0 {
		entry.UserID = &userID
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		log.Printf("audit write failed [%s %s/%d]: %v", action, entityType, entityID, err)
	}
}

// ListActivitiesInput represents activity listing input
type ListActivitiesInput struct {
	Page       int
	Limit      int
	UserID     *uint
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
}

// ListActivitiesOutput represents activity listing output
type ListActivitiesOutput struct {
	Activities []*models.ActivityLog `json:"activities"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// List lists audit entries, newest first
func (s *ActivityService) List(ctx context.Context, input *ListActivitiesInput) (*ListActivitiesOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := &repositories.ActivityFilter{
		UserID:     input.UserID,
		Action:     input.Action,
		EntityType: input.EntityType,
		From:       input.From,
		To:         input.To,
		Offset:     (input.Page - 1) * input.Limit,
		Limit:      input.Limit,
	}

	entries, total, err := s.activityRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListActivitiesOutput{
		Activities: entries,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListRange returns all audit entries in a time range (export)
func (s *ActivityService) ListRange(ctx context.Context, from, to *time.Time) ([]*models.ActivityLog, error) {
	filter := &repositories.ActivityFilter{From: from, To: to}
	entries, _, err := s.activityRepo.List(ctx, filter)
	return entries, err
}
