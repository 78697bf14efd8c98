package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardService handles dashboard aggregates
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// User Statistics
	TotalUsers       int64 `json:"total_users"`
	TotalStudents    int64 `json:"total_students"`
	TotalStaff       int64 `json:"total_staff"`
	TotalTechnicians int64 `json:"total_technicians"`

	// Inventory Statistics
	TotalItems            int64 `json:"total_items"`
	AvailableItems        int64 `json:"available_items"`
	BorrowedItems         int64 `json:"borrowed_items"`
	UnderMaintenanceItems int64 `json:"under_maintenance_items"`

	// Borrow Statistics
	PendingBorrows   int64 `json:"pending_borrows"`
	ApprovedBorrows  int64 `json:"approved_borrows"`
	OverdueBorrows   int64 `json:"overdue_borrows"`
	PendingReturns   int64 `json:"pending_returns"`
	BorrowsThisWeek  int64 `json:"borrows_this_week"`
	BorrowsThisMonth int64 `json:"borrows_this_month"`

	// Maintenance Statistics
	OpenTickets         int64 `json:"open_tickets"`
	InProgressTickets   int64 `json:"in_progress_tickets"`
	OpenDamageReports   int64 `json:"open_damage_reports"`
	UpcomingMaintenance int64 `json:"upcoming_maintenance"`

	// Rankings
	TopBorrowedItems []ItemBorrowStats `json:"top_borrowed_items"`
	RecentBorrows    []BorrowSummary   `json:"recent_borrows"`
}

// ItemBorrowStats represents per-item borrow totals
type ItemBorrowStats struct {
	ItemID      uint   `json:"item_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	BorrowCount int64  `json:"borrow_count"`
}

// BorrowSummary represents a borrow request summary
type BorrowSummary struct {
	ID           uint      `json:"id"`
	ItemName     string    `json:"item_name"`
	BorrowerName string    `json:"borrower_name"`
	Quantity     int       `json:"quantity"`
	Status       string    `json:"status"`
	DueDate      time.Time `json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}
	now := time.Now()

	// User counts by role
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "STUDENT").Count(&data.TotalStudents)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "STAFF").Count(&data.TotalStaff)
	s.db.WithContext(ctx).Table("users").Where("role = ? AND deleted_at IS NULL", "TECHNICIAN").Count(&data.TotalTechnicians)

	// Item counts by status
	s.db.WithContext(ctx).Table("items").Where("deleted_at IS NULL").Count(&data.TotalItems)
	s.db.WithContext(ctx).Table("items").Where("status = ? AND deleted_at IS NULL", "available").Count(&data.AvailableItems)
	s.db.WithContext(ctx).Table("items").Where("status = ? AND deleted_at IS NULL", "borrowed").Count(&data.BorrowedItems)
	s.db.WithContext(ctx).Table("items").Where("status = ? AND deleted_at IS NULL", "under_maintenance").Count(&data.UnderMaintenanceItems)

	// Borrow workflow counts
	s.db.WithContext(ctx).Table("borrow_requests").Where("status = ? AND deleted_at IS NULL", "pending").Count(&data.PendingBorrows)
	s.db.WithContext(ctx).Table("borrow_requests").Where("status = ? AND deleted_at IS NULL", "approved").Count(&data.ApprovedBorrows)
	s.db.WithContext(ctx).Table("borrow_requests").
		Where("status = ? AND due_date < ? AND deleted_at IS NULL", "approved", now).
		Count(&data.OverdueBorrows)
	s.db.WithContext(ctx).Table("return_requests").Where("status = ? AND deleted_at IS NULL", "pending").Count(&data.PendingReturns)

	weekAgo := now.AddDate(0, 0, -7)
	s.db.WithContext(ctx).Table("borrow_requests").
		Where("created_at >= ? AND deleted_at IS NULL", weekAgo).
		Count(&data.BorrowsThisWeek)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	s.db.WithContext(ctx).Table("borrow_requests").
		Where("created_at >= ? AND deleted_at IS NULL", monthStart).
		Count(&data.BorrowsThisMonth)

	// Maintenance counts
	s.db.WithContext(ctx).Table("maintenance_records").
		Where("status IN ? AND deleted_at IS NULL", []string{"pending", "on_hold"}).
		Count(&data.OpenTickets)
	s.db.WithContext(ctx).Table("maintenance_records").
		Where("status = ? AND deleted_at IS NULL", "in_progress").
		Count(&data.InProgressTickets)
	s.db.WithContext(ctx).Table("damage_reports").
		Where("status IN ? AND deleted_at IS NULL", []string{"pending", "reviewing"}).
		Count(&data.OpenDamageReports)
	s.db.WithContext(ctx).Table("maintenance_schedules").
		Where("due_date >= ?", now).
		Count(&data.UpcomingMaintenance)

	// Top borrowed items
	var topItems []struct {
		ItemID      uint
		Code        string
		Name        string
		BorrowCount int64
	}
	s.db.WithContext(ctx).Table("borrow_requests").
		Select("borrow_requests.item_id, items.code, items.name, COUNT(*) as borrow_count").
		Joins("LEFT JOIN items ON borrow_requests.item_id = items.id").
		Where("borrow_requests.status IN ? AND borrow_requests.deleted_at IS NULL", []string{"approved", "returned"}).
		Group("borrow_requests.item_id, items.code, items.name").
		Order("borrow_count DESC").
		Limit(5).
		Scan(&topItems)

	data.TopBorrowedItems = make([]ItemBorrowStats, len(topItems))
	for i, it := range topItems {
		data.TopBorrowedItems[i] = ItemBorrowStats{
			ItemID:      it.ItemID,
			Code:        it.Code,
			Name:        it.Name,
			BorrowCount: it.BorrowCount,
		}
	}

	data.RecentBorrows = s.recentBorrows(ctx, nil, 10)

	return data, nil
}

// ============================================================
// Student Dashboard
// ============================================================

// StudentDashboardData represents a borrower's dashboard data
type StudentDashboardData struct {
	ActiveBorrows  int64 `json:"active_borrows"`
	PendingBorrows int64 `json:"pending_borrows"`
	OverdueBorrows int64 `json:"overdue_borrows"`
	TotalBorrowed  int64 `json:"total_borrowed"`

	MyBorrows []BorrowSummary `json:"my_borrows"`
}

// GetStudentDashboard returns a borrower's dashboard data
func (s *DashboardService) GetStudentDashboard(ctx context.Context, userID uint) (*StudentDashboardData, error) {
	data := &StudentDashboardData{}
	now := time.Now()

	s.db.WithContext(ctx).Table("borrow_requests").
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, "approved").
		Count(&data.ActiveBorrows)
	s.db.WithContext(ctx).Table("borrow_requests").
		Where("user_id = ? AND status = ? AND deleted_at IS NULL", userID, "pending").
		Count(&data.PendingBorrows)
	s.db.WithContext(ctx).Table("borrow_requests").
		Where("user_id = ? AND status = ? AND due_date < ? AND deleted_at IS NULL", userID, "approved", now).
		Count(&data.OverdueBorrows)
	s.db.WithContext(ctx).Table("borrow_requests").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&data.TotalBorrowed)

	data.MyBorrows = s.recentBorrows(ctx, &userID, 10)

	return data, nil
}

// ============================================================
// Technician Dashboard
// ============================================================

// TechnicianDashboardData represents a technician's dashboard data
type TechnicianDashboardData struct {
	AssignedTickets   int64 `json:"assigned_tickets"`
	InProgressTickets int64 `json:"in_progress_tickets"`
	CompletedThisWeek int64 `json:"completed_this_week"`
	UnassignedTickets int64 `json:"unassigned_tickets"`

	MyTickets []TicketSummary `json:"my_tickets"`
}

// TicketSummary represents a maintenance ticket summary
type TicketSummary struct {
	ID        uint      `json:"id"`
	ItemName  string    `json:"item_name"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// GetTechnicianDashboard returns a technician's dashboard data
func (s *DashboardService) GetTechnicianDashboard(ctx context.Context, technicianID uint) (*TechnicianDashboardData, error) {
	data := &TechnicianDashboardData{}
	weekAgo := time.Now().AddDate(0, 0, -7)

	s.db.WithContext(ctx).Table("maintenance_records").
		Where("technician_id = ? AND status <> ? AND deleted_at IS NULL", technicianID, "completed").
		Count(&data.AssignedTickets)
	s.db.WithContext(ctx).Table("maintenance_records").
		Where("technician_id = ? AND status = ? AND deleted_at IS NULL", technicianID, "in_progress").
		Count(&data.InProgressTickets)
	s.db.WithContext(ctx).Table("maintenance_records").
		Where("technician_id = ? AND status = ? AND actual_completion_at >= ? AND deleted_at IS NULL", technicianID, "completed", weekAgo).
		Count(&data.CompletedThisWeek)
	s.db.WithContext(ctx).Table("maintenance_records").
		Where("technician_id IS NULL AND status <> ? AND deleted_at IS NULL", "completed").
		Count(&data.UnassignedTickets)

	var tickets []struct {
		ID        uint
		ItemName  string
		Title     string
		Priority  string
		Status    string
		CreatedAt time.Time
	}
	s.db.WithContext(ctx).Table("maintenance_records").
		Select("maintenance_records.id, items.name as item_name, maintenance_records.title, maintenance_records.priority, maintenance_records.status, maintenance_records.created_at").
		Joins("LEFT JOIN items ON maintenance_records.item_id = items.id").
		Where("maintenance_records.technician_id = ? AND maintenance_records.status <> ? AND maintenance_records.deleted_at IS NULL", technicianID, "completed").
		Order("maintenance_records.created_at DESC").
		Limit(10).
		Scan(&tickets)

	data.MyTickets = make([]TicketSummary, len(tickets))
	for i, t := range tickets {
		data.MyTickets[i] = TicketSummary{
			ID:        t.ID,
			ItemName:  t.ItemName,
			Title:     t.Title,
			Priority:  t.Priority,
			Status:    t.Status,
			CreatedAt: t.CreatedAt,
		}
	}

	return data, nil
}

// recentBorrows lists recent borrow requests, optionally for one user
func (s *DashboardService) recentBorrows(ctx context.Context, userID *uint, limit int) []BorrowSummary {
	var rows []struct {
		ID           uint
		ItemName     string
		BorrowerName string
		Quantity     int
		Status       string
		DueDate      time.Time
		CreatedAt    time.Time
	}

	query := s.db.WithContext(ctx).Table("borrow_requests").
		Select("borrow_requests.id, items.name as item_name, users.full_name as borrower_name, borrow_requests.quantity, borrow_requests.status, borrow_requests.due_date, borrow_requests.created_at").
		Joins("LEFT JOIN items ON borrow_requests.item_id = items.id").
		Joins("LEFT JOIN users ON borrow_requests.user_id = users.id").
		Where("borrow_requests.deleted_at IS NULL")
	if userID != nil {
		query = query.Where("borrow_requests.user_id = ?", *userID)
	}
	query.Order("borrow_requests.created_at DESC").Limit(limit).Scan(&rows)

	out := make([]BorrowSummary, len(rows))
	for i, r := range rows {
		out[i] = BorrowSummary{
			ID:           r.ID,
			ItemName:     r.ItemName,
			BorrowerName: r.BorrowerName,
			Quantity:     r.Quantity,
			Status:       r.Status,
			DueDate:      r.DueDate,
			CreatedAt:    r.CreatedAt,
		}
	}
	return out
}
