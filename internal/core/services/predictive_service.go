package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"
	"lablink-inventory/internal/core/domain"

	"gorm.io/gorm"
)

// Predictive rule errors
var (
	ErrRuleNotFound         = errors.New("maintenance rule not found")
	ErrInvalidConditionType = errors.New("invalid rule condition type")
	ErrInvalidThreshold     = errors.New("threshold must be positive")
)

// scheduleLeadDays is how far ahead a flagged item is scheduled
const scheduleLeadDays = 7

var validConditionTypes = map[string]bool{
	models.RuleConditionBorrowCount:          true,
	models.RuleConditionDaysSinceMaintenance: true,
	models.RuleConditionAgeDays:              true,
	models.RuleConditionDamageReports:        true,
}

// PredictiveService evaluates maintenance rules against the catalog
type PredictiveService struct {
	ruleRepo        repositories.MaintenanceRuleRepository
	scheduleRepo    repositories.MaintenanceScheduleRepository
	maintenanceRepo repositories.MaintenanceRepository
	itemRepo        repositories.ItemRepository
	borrowRepo      repositories.BorrowRepository
	damageRepo      repositories.DamageReportRepository
	userRepo        repositories.UserRepository
	activity        *ActivityService
	notification    *NotificationService
}

// NewPredictiveService creates a new predictive maintenance service
func NewPredictiveService(
	ruleRepo repositories.MaintenanceRuleRepository,
	scheduleRepo repositories.MaintenanceScheduleRepository,
	maintenanceRepo repositories.MaintenanceRepository,
	itemRepo repositories.ItemRepository,
	borrowRepo repositories.BorrowRepository,
	damageRepo repositories.DamageReportRepository,
	userRepo repositories.UserRepository,
	activity *ActivityService,
	notification *NotificationService,
) *PredictiveService {
	return &PredictiveService{
		ruleRepo:        ruleRepo,
		scheduleRepo:    scheduleRepo,
		maintenanceRepo: maintenanceRepo,
		itemRepo:        itemRepo,
		borrowRepo:      borrowRepo,
		damageRepo:      damageRepo,
		userRepo:        userRepo,
		activity:        activity,
		notification:    notification,
	}
}

// RuleInput represents rule create/update input
type RuleInput struct {
	Name             string `json:"name" validate:"required,max=100"`
	ConditionType    string `json:"condition_type" validate:"required"`
	ThresholdValue   int    `json:"threshold_value" validate:"required,min=1"`
	CategoryID       *uint  `json:"category_id,omitempty"`
	Priority         string `json:"priority,omitempty"`
	AutoCreateTicket bool   `json:"auto_create_ticket"`
	IsActive         *bool  `json:"is_active,omitempty"`
}

// EvaluationResult describes one item flagged by one rule
type EvaluationResult struct {
	RuleID        uint   `json:"rule_id"`
	RuleName      string `json:"rule_name"`
	ItemID        uint   `json:"item_id"`
	ItemCode      string `json:"item_code"`
	MetricValue   int    `json:"metric_value"`
	Threshold     int    `json:"threshold"`
	Scheduled     bool   `json:"scheduled"`
	TicketCreated bool   `json:"ticket_created"`
}

// EvaluationSummary is the outcome of one evaluation run
type EvaluationSummary struct {
	EvaluatedRules int                 `json:"evaluated_rules"`
	FlaggedItems   int                 `json:"flagged_items"`
	Results        []*EvaluationResult `json:"results"`
	RanAt          time.Time           `json:"ran_at"`
}

// CreateRule creates a new predictive rule
func (s *PredictiveService) CreateRule(ctx context.Context, actorID uint, input *RuleInput, ipAddress string) (*models.MaintenanceRule, error) {
	if !validConditionTypes[input.ConditionType] {
		return nil, ErrInvalidConditionType
	}
	if input.ThresholdValue < 1 {
		return nil, ErrInvalidThreshold
	}

	priority := input.Priority
	if priority == "" {
		priority = models.MaintenancePriorityMedium
	}
	if !validPriorities[priority] {
		return nil, ErrInvalidPriority
	}

	rule := &models.MaintenanceRule{
		Name:             input.Name,
		ConditionType:    input.ConditionType,
		ThresholdValue:   input.ThresholdValue,
		CategoryID:       input.CategoryID,
		Priority:         priority,
		AutoCreateTicket: input.AutoCreateTicket,
		IsActive:         true,
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionCreate, "maintenance_rule", rule.ID,
		fmt.Sprintf("created rule %q (%s >= %d)", rule.Name, rule.ConditionType, rule.ThresholdValue), ipAddress)

	return rule, nil
}

// ListRules lists all rules including inactive
func (s *PredictiveService) ListRules(ctx context.Context) ([]*models.MaintenanceRule, error) {
	return s.ruleRepo.ListAll(ctx)
}

// UpdateRule updates a rule
func (s *PredictiveService) UpdateRule(ctx context.Context, actorID, id uint, input *RuleInput, ipAddress string) (*models.MaintenanceRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	if !validConditionTypes[input.ConditionType] {
		return nil, ErrInvalidConditionType
	}
	if input.ThresholdValue < 1 {
		return nil, ErrInvalidThreshold
	}
	if input.Priority != "" {
		if !validPriorities[input.Priority] {
			return nil, ErrInvalidPriority
		}
		rule.Priority = input.Priority
	}

	rule.Name = input.Name
	rule.ConditionType = input.ConditionType
	rule.ThresholdValue = input.ThresholdValue
	rule.CategoryID = input.CategoryID
	rule.Category = nil
	rule.AutoCreateTicket = input.AutoCreateTicket
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actorID, models.ActionUpdate, "maintenance_rule", rule.ID,
		fmt.Sprintf("updated rule %q", rule.Name), ipAddress)

	return rule, nil
}

// DeleteRule soft deletes a rule
func (s *PredictiveService) DeleteRule(ctx context.Context, actorID, id uint, ipAddress string) error {
	if _, err := s.ruleRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, actorID, models.ActionDelete, "maintenance_rule", id, "", ipAddress)
	return nil
}

// ListSchedules lists schedule entries produced by evaluations
func (s *PredictiveService) ListSchedules(ctx context.Context, page, limit int) ([]*models.MaintenanceSchedule, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.scheduleRepo.List(ctx, (page-1)*limit, limit)
}

// Evaluate runs every active rule against its item scope and returns
// the full result set. Items already scheduled by the same rule are
// skipped; tickets are deduplicated against open maintenance records.
func (s *PredictiveService) Evaluate(ctx context.Context, actorID uint, ipAddress string) (*EvaluationSummary, error) {
	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	summary := &EvaluationSummary{
		EvaluatedRules: len(rules),
		Results:        []*EvaluationResult{},
		RanAt:          now,
	}

	for _, rule := range rules {
		items, err := s.itemRepo.ListForEvaluation(ctx, rule.CategoryID)
		if err != nil {
			log.Printf("rule %d item listing failed: %v", rule.ID, err)
			continue
		}

		for _, item := range items {
			metric, err := s.metricFor(ctx, rule, item, now)
			if err != nil {
				log.Printf("rule %d metric for item %d failed: %v", rule.ID, item.ID, err)
				continue
			}
			if metric < rule.ThresholdValue {
				continue
			}

			result := &EvaluationResult{
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				ItemID:      item.ID,
				ItemCode:    item.Code,
				MetricValue: metric,
				Threshold:   rule.ThresholdValue,
			}
			summary.Results = append(summary.Results, result)
			summary.FlaggedItems++

			already, err := s.scheduleRepo.HasUpcoming(ctx, rule.ID, item.ID, now)
			if err != nil {
				log.Printf("rule %d schedule dedupe for item %d failed: %v", rule.ID, item.ID, err)
				continue
			}
			if already {
				continue
			}

			schedule := &models.MaintenanceSchedule{
				ItemID:  item.ID,
				RuleID:  rule.ID,
				DueDate: now.AddDate(0, 0, scheduleLeadDays),
				Reason:  fmt.Sprintf("%s: %d >= %d", rule.ConditionType, metric, rule.ThresholdValue),
			}
			if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
				log.Printf("rule %d schedule for item %d failed: %v", rule.ID, item.ID, err)
				continue
			}
			result.Scheduled = true

			if rule.AutoCreateTicket {
				result.TicketCreated = s.createTicketForFlag(ctx, actorID, rule, item, metric)
			}
		}
	}

	s.activity.Record(ctx, actorID, models.ActionRuleCheck, "maintenance_rule", 0,
		fmt.Sprintf("evaluated %d rules, flagged %d items", summary.EvaluatedRules, summary.FlaggedItems), ipAddress)

	s.notifyFlagged(ctx, summary)

	return summary, nil
}

// metricFor computes the rule metric for one item
func (s *PredictiveService) metricFor(ctx context.Context, rule *models.MaintenanceRule, item *models.Item, now time.Time) (int, error) {
	switch rule.ConditionType {
	case models.RuleConditionBorrowCount:
		count, err := s.borrowRepo.CountByItem(ctx, item.ID, []string{
			models.BorrowStatusApproved,
			models.BorrowStatusReturned,
		})
		return int(count), err

	case models.RuleConditionDaysSinceMaintenance:
		last, err := s.maintenanceRepo.LastCompletedAt(ctx, item.ID)
		if err != nil {
			return 0, err
		}
		since := item.AcquiredAt
		if last != nil {
			since = *last
		}
		return int(now.Sub(since).Hours() / 24), nil

	case models.RuleConditionAgeDays:
		return int(now.Sub(item.AcquiredAt).Hours() / 24), nil

	case models.RuleConditionDamageReports:
		count, err := s.damageRepo.CountByItem(ctx, item.ID)
		return int(count), err

	default:
		return 0, ErrInvalidConditionType
	}
}

// createTicketForFlag opens a maintenance ticket for a flagged item
// unless one is already open. Reports whether a ticket was created.
func (s *PredictiveService) createTicketForFlag(ctx context.Context, actorID uint, rule *models.MaintenanceRule, item *models.Item, metric int) bool {
	open, err := s.maintenanceRepo.HasOpenForItem(ctx, item.ID)
	if err != nil {
		log.Printf("open ticket check for item %d failed: %v", item.ID, err)
		return false
	}
	if open {
		return false
	}

	rec := &models.MaintenanceRecord{
		ItemID:      item.ID,
		Title:       fmt.Sprintf("Predictive: %s", rule.Name),
		Description: fmt.Sprintf("rule %q flagged item %s (%s: %d >= %d)", rule.Name, item.Code, rule.ConditionType, metric, rule.ThresholdValue),
		Priority:    rule.Priority,
		Status:      models.MaintenanceStatusPending,
		CreatedBy:   actorID,
	}
	if err := s.maintenanceRepo.Create(ctx, rec); err != nil {
		log.Printf("auto ticket for item %d failed: %v", item.ID, err)
		return false
	}
	return true
}

// notifyFlagged emails technicians about newly scheduled items
func (s *PredictiveService) notifyFlagged(ctx context.Context, summary *EvaluationSummary) {
	if !s.notification.IsEnabled() {
		return
	}

	scheduled := map[string]int{}
	for _, r := range summary.Results {
		if r.Scheduled {
			scheduled[r.RuleName]++
		}
	}
	if len(scheduled) == 0 {
		return
	}

	technicians, err := s.userRepo.ListByRole(ctx, string(domain.RoleTechnician))
	if err != nil {
		log.Printf("technician listing for flag notification failed: %v", err)
		return
	}
	for ruleName, count := range scheduled {
		s.notification.NotifyMaintenanceFlagged(technicians, ruleName, count)
	}
}
