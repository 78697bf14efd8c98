package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lablink-inventory/internal/adapters/persistence/models"
	"lablink-inventory/internal/adapters/persistence/repositories"

	"github.com/xuri/excelize/v2"
)

// Report errors
var (
	ErrUnknownReportType = errors.New("unknown report type")
	ErrUnknownFormat     = errors.New("unknown export format")
)

// Report types
const (
	ReportBorrows     = "borrows"
	ReportMaintenance = "maintenance"
	ReportDamage      = "damage"
	ReportActivity    = "activity"
	ReportUsers       = "users"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ReportService builds CSV and XLSX exports
type ReportService struct {
	borrowRepo      repositories.BorrowRepository
	maintenanceRepo repositories.MaintenanceRepository
	damageRepo      repositories.DamageReportRepository
	userRepo        repositories.UserRepository
	activity        *ActivityService
}

// NewReportService creates a new report service
func NewReportService(
	borrowRepo repositories.BorrowRepository,
	maintenanceRepo repositories.MaintenanceRepository,
	damageRepo repositories.DamageReportRepository,
	userRepo repositories.UserRepository,
	activity *ActivityService,
) *ReportService {
	return &ReportService{
		borrowRepo:      borrowRepo,
		maintenanceRepo: maintenanceRepo,
		damageRepo:      damageRepo,
		userRepo:        userRepo,
		activity:        activity,
	}
}

// ExportResult carries the rendered file
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders the named report in the requested format
func (s *ReportService) Export(ctx context.Context, actorID uint, reportType, format string, from, to *time.Time, ipAddress string) (*ExportResult, error) {
	var header []string
	var rows [][]string
	var err error

	switch reportType {
	case ReportBorrows:
		header, rows, err = s.borrowRows(ctx)
	case ReportMaintenance:
		header, rows, err = s.maintenanceRows(ctx)
	case ReportDamage:
		header, rows, err = s.damageRows(ctx)
	case ReportActivity:
		header, rows, err = s.activityRows(ctx, from, to)
	case ReportUsers:
		header, rows, err = s.userRows(ctx)
	default:
		return nil, ErrUnknownReportType
	}
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("20060102-150405")
	var result *ExportResult

	switch format {
	case FormatCSV:
		data, err := renderCSV(header, rows)
		if err != nil {
			return nil, err
		}
		result = &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.csv", reportType, stamp),
			ContentType: "text/csv",
			Data:        data,
		}
	case FormatXLSX:
		data, err := renderXLSX(reportType, header, rows)
		if err != nil {
			return nil, err
		}
		result = &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.xlsx", reportType, stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	default:
		return nil, ErrUnknownFormat
	}

	s.activity.Record(ctx, actorID, models.ActionExport, "report", 0,
		fmt.Sprintf("exported %s report as %s (%d rows)", reportType, format, len(rows)), ipAddress)

	return result, nil
}

func (s *ReportService) borrowRows(ctx context.Context) ([]string, [][]string, error) {
	requests, err := s.borrowRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"ID", "Item Code", "Item Name", "Borrower", "Quantity", "Status", "Start Date", "Due Date", "Returned At", "Created At"}
	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		itemCode, itemName := "", ""
		if r.Item != nil {
			itemCode, itemName = r.Item.Code, r.Item.Name
		}
		borrower := ""
		if r.Borrower != nil {
			borrower = r.Borrower.FullName
		}
		returnedAt := ""
		if r.ActualReturnAt != nil {
			returnedAt = r.ActualReturnAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.ID), 10),
			itemCode,
			itemName,
			borrower,
			strconv.Itoa(r.Quantity),
			r.Status,
			r.StartDate.Format("2006-01-02"),
			r.DueDate.Format("2006-01-02"),
			returnedAt,
			r.CreatedAt.Format(time.RFC3339),
		})
	}
	return header, rows, nil
}

func (s *ReportService) maintenanceRows(ctx context.Context) ([]string, [][]string, error) {
	records, err := s.maintenanceRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"ID", "Item Code", "Title", "Priority", "Status", "Technician", "Started At", "Completed At", "Cost", "Created At"}
	rows := make([][]string, 0, len(records))
	for _, m := range records {
		itemCode := ""
		if m.Item != nil {
			itemCode = m.Item.Code
		}
		technician := ""
		if m.Technician != nil {
			technician = m.Technician.FullName
		}
		startedAt := ""
		if m.StartedAt != nil {
			startedAt = m.StartedAt.Format(time.RFC3339)
		}
		completedAt := ""
		if m.ActualCompletionAt != nil {
			completedAt = m.ActualCompletionAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(m.ID), 10),
			itemCode,
			m.Title,
			m.Priority,
			m.Status,
			technician,
			startedAt,
			completedAt,
			strconv.FormatFloat(m.Cost, 'f', 2, 64),
			m.CreatedAt.Format(time.RFC3339),
		})
	}
	return header, rows, nil
}

func (s *ReportService) damageRows(ctx context.Context) ([]string, [][]string, error) {
	reports, err := s.damageRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"ID", "Item Code", "Reporter", "Severity", "Status", "Description", "Resolved At", "Created At"}
	rows := make([][]string, 0, len(reports))
	for _, d := range reports {
		itemCode := ""
		if d.Item != nil {
			itemCode = d.Item.Code
		}
		reporter := ""
		if d.Reporter != nil {
			reporter = d.Reporter.FullName
		}
		resolvedAt := ""
		if d.ResolvedAt != nil {
			resolvedAt = d.ResolvedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(d.ID), 10),
			itemCode,
			reporter,
			d.Severity,
			d.Status,
			d.Description,
			resolvedAt,
			d.CreatedAt.Format(time.RFC3339),
		})
	}
	return header, rows, nil
}

func (s *ReportService) activityRows(ctx context.Context, from, to *time.Time) ([]string, [][]string, error) {
	entries, err := s.activity.ListRange(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"ID", "User", "Action", "Entity Type", "Entity ID", "Detail", "IP Address", "Created At"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		actor := ""
		if e.Actor != nil {
			actor = e.Actor.Username
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			actor,
			e.Action,
			e.EntityType,
			strconv.FormatUint(uint64(e.EntityID), 10),
			e.Detail,
			e.IPAddress,
			e.CreatedAt.Format(time.RFC3339),
		})
	}
	return header, rows, nil
}

func (s *ReportService) userRows(ctx context.Context) ([]string, [][]string, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"ID", "Username", "Full Name", "Email", "Department", "Role", "Active", "Created At"}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Username,
			u.FullName,
			u.Email,
			u.Department,
			u.Role,
			strconv.FormatBool(u.IsActive),
			u.CreatedAt.Format(time.RFC3339),
		})
	}
	return header, rows, nil
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(sheet string, header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
