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

// Damage report errors
var (
	ErrDamageNotFound     = errors.New("damage report not found")
	ErrInvalidSeverity    = errors.New("invalid severity")
	ErrInvalidResolution  = errors.New("invalid resolution status")
	ErrDamageNotOpen      = errors.New("damage report is not open")
	ErrResolutionRequired = errors.New("resolution notes are required")
)

var validSeverities = map[string]bool{
	models.DamageSeverityMinor:    true,
	models.DamageSeverityModerate: true,
	models.DamageSeveritySevere:   true,
}

var validResolutions = map[string]bool{
	models.DamageStatusResolved:             true,
	models.DamageStatusRejected:             true,
	models.DamageStatusMaintenanceScheduled: true,
}

// DamageService handles damage report business logic
type DamageService struct {
	damageRepo      repositories.DamageReportRepository
	itemRepo        repositories.ItemRepository
	maintenanceRepo repositories.MaintenanceRepository
	activity        *ActivityService
}

// NewDamageService creates a new damage service
func NewDamageService(
	damageRepo repositories.DamageReportRepository,
	itemRepo repositories.ItemRepository,
	maintenanceRepo repositories.MaintenanceRepository,
	activity *ActivityService,
) *DamageService {
	return &DamageService{
		damageRepo:      damageRepo,
		itemRepo:        itemRepo,
		maintenanceRepo: maintenanceRepo,
		activity:        activity,
	}
}

// ReportDamageInput represents damage report creation input
type ReportDamageInput struct {
	ItemID      uint   `json:"item_id" validate:"required"`
	Severity    string `json:"severity,omitempty"`
	Description string `json:"description" validate:"required"`
}

// ResolveDamageInput represents triage resolution input
type ResolveDamageInput struct {
	Status          string `json:"status" validate:"required"`
	ResolutionNotes string `json:"resolution_notes" validate:"required"`
}

// ListDamageInput represents damage listing input
type ListDamageInput struct {
	Page       int
	Limit      int
	ItemID     *uint
	ReporterID *uint
	Status     string
	Severity   string
}

// ListDamageOutput represents damage listing output
type ListDamageOutput struct {
	Reports    []*models.DamageReport `json:"reports"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// Report files a new damage report
func (s *DamageService) Report(ctx context.Context, reporterID uint, input *ReportDamageInput, ipAddress string) (*models.DamageReport, error) {
	severity := input.Severity
	if severity == "" {
		severity = models.DamageSeverityMinor
	}
	if !validSeverities[severity] {
		return nil, ErrInvalidSeverity
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

	report := &models.DamageReport{
		ItemID:      input.ItemID,
		ReporterID:  reporterID,
		Severity:    severity,
		Description: input.Description,
		Status:      models.DamageStatusPending,
	}
	if err := s.damageRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, reporterID, models.ActionCreate, "damage_report", report.ID,
		fmt.Sprintf("reported %s damage on item %s", severity, item.Code), ipAddress)

	return report, nil
}

// GetReport gets a damage report by ID
func (s *DamageService) GetReport(ctx context.Context, id uint) (*models.DamageReport, error) {
	report, err := s.damageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDamageNotFound
		}
		return nil, err
	}
	return report, nil
}

// ListReports lists damage reports with filters and pagination
func (s *DamageService) ListReports(ctx context.Context, input *ListDamageInput) (*ListDamageOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	filter := &repositories.DamageFilter{
		ItemID:     input.ItemID,
		ReporterID: input.ReporterID,
		Status:     input.Status,
		Severity:   input.Severity,
		Offset:     (input.Page - 1) * input.Limit,
		Limit:      input.Limit,
	}

	reports, total, err := s.damageRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListDamageOutput{
		Reports:    reports,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// StartReview moves a pending report into triage
func (s *DamageService) StartReview(ctx context.Context, reviewerID, reportID uint, ipAddress string) (*models.DamageReport, error) {
	report, err := s.damageRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDamageNotFound
		}
		return nil, err
	}
	if report.Status != models.DamageStatusPending {
		return nil, ErrDamageNotOpen
	}

	report.Status = models.DamageStatusReviewing
	if err := s.damageRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, reviewerID, models.ActionStatusChange, "damage_report", report.ID,
		"review started", ipAddress)
	return report, nil
}

// Resolve closes an open report with one of the terminal statuses.
// The resolution is committed first; when maintenance is scheduled the
// ticket insert follows as a best-effort write.
func (s *DamageService) Resolve(ctx context.Context, resolverID, reportID uint, input *ResolveDamageInput, ipAddress string) (*models.DamageReport, error) {
	if !validResolutions[input.Status] {
		return nil, ErrInvalidResolution
	}
	if input.ResolutionNotes == "" {
		return nil, ErrResolutionRequired
	}

	report, err := s.damageRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDamageNotFound
		}
		return nil, err
	}
	if report.Status != models.DamageStatusPending && report.Status != models.DamageStatusReviewing {
		return nil, ErrDamageNotOpen
	}

	now := time.Now()
	report.Status = input.Status
	report.ResolvedBy = &resolverID
	report.ResolvedAt = &now
	report.ResolutionNotes = input.ResolutionNotes
	if err := s.damageRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	if input.Status == models.DamageStatusMaintenanceScheduled {
		s.openTicketFor(ctx, resolverID, report)
	}

	s.activity.Record(ctx, resolverID, models.ActionStatusChange, "damage_report", report.ID,
		fmt.Sprintf("resolved as %s", input.Status), ipAddress)

	return report, nil
}

// openTicketFor creates a repair ticket linked to the report. Severe
// damage gets a high-priority ticket.
func (s *DamageService) openTicketFor(ctx context.Context, resolverID uint, report *models.DamageReport) {
	open, err := s.maintenanceRepo.HasOpenForItem(ctx, report.ItemID)
	if err != nil {
		log.Printf("open ticket check for damage report %d failed: %v", report.ID, err)
		return
	}
	if open {
		return
	}

	priority := models.MaintenancePriorityMedium
	if report.Severity == models.DamageSeveritySevere {
		priority = models.MaintenancePriorityHigh
	}

	rec := &models.MaintenanceRecord{
		ItemID:         report.ItemID,
		DamageReportID: &report.ID,
		Title:          fmt.Sprintf("Repair from damage report #%d", report.ID),
		Description:    report.Description,
		Priority:       priority,
		Status:         models.MaintenanceStatusPending,
		CreatedBy:      resolverID,
	}
	if err := s.maintenanceRepo.Create(ctx, rec); err != nil {
		log.Printf("repair ticket for damage report %d failed: %v", report.ID, err)
	}
}
