package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"

	"lablink-inventory/internal/adapters/persistence/models"
)

// NotificationService sends workflow emails over SMTP. All sends are
// best effort: failures are logged, never propagated to the caller.
type NotificationService struct {
	host    string
	port    string
	from    string
	user    string
	pass    string
	enabled bool
}

// NewNotificationService creates a new notification service.
// Disabled unless SMTP_HOST is configured.
func NewNotificationService() *NotificationService {
	host := os.Getenv("SMTP_HOST")
	return &NotificationService{
		host:    host,
		port:    getenvDefault("SMTP_PORT", "587"),
		from:    getenvDefault("SMTP_FROM", "lablink@localhost"),
		user:    os.Getenv("SMTP_USER"),
		pass:    os.Getenv("SMTP_PASS"),
		enabled: host != "",
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// send delivers one message; no-op when disabled
func (s *NotificationService) send(to, subject, body string) {
	if !s.enabled || to == "" {
		return
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, to, subject, body))

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, msg); err != nil {
		log.Printf("notification send to %s failed: %v", to, err)
	}
}

// NotifyBorrowApproved notifies the borrower that their request was approved
func (s *NotificationService) NotifyBorrowApproved(req *models.BorrowRequest, borrower *models.User) {
	if borrower == nil {
		return
	}
	itemName := ""
	if req.Item != nil {
		itemName = req.Item.Name
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour borrow request #%d (%s x%d) has been approved.\nDue date: %s.\n\nLabLink Inventory",
		borrower.FullName, req.ID, itemName, req.Quantity, req.DueDate.Format("2006-01-02"))
	s.send(borrower.Email, fmt.Sprintf("Borrow request #%d approved", req.ID), body)
}

// NotifyBorrowRejected notifies the borrower that their request was rejected
func (s *NotificationService) NotifyBorrowRejected(req *models.BorrowRequest, borrower *models.User, reason string) {
	if borrower == nil {
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour borrow request #%d was rejected.\nReason: %s\n\nLabLink Inventory",
		borrower.FullName, req.ID, reason)
	s.send(borrower.Email, fmt.Sprintf("Borrow request #%d rejected", req.ID), body)
}

// NotifyReturnVerified notifies the borrower about the outcome of a return
func (s *NotificationService) NotifyReturnVerified(ret *models.ReturnRequest, borrower *models.User, accepted bool) {
	if borrower == nil {
		return
	}
	outcome := "accepted"
	if !accepted {
		outcome = "rejected: " + ret.RejectReason
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour return for borrow request #%d was %s.\n\nLabLink Inventory",
		borrower.FullName, ret.BorrowRequestID, outcome)
	s.send(borrower.Email, fmt.Sprintf("Return request #%d processed", ret.ID), body)
}

// NotifyBorrowOverdue reminds the borrower that a borrow is past due
func (s *NotificationService) NotifyBorrowOverdue(req *models.BorrowRequest) {
	if req.Borrower == nil {
		return
	}
	itemName := ""
	if req.Item != nil {
		itemName = req.Item.Name
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nBorrow request #%d (%s x%d) was due on %s and has not been returned.\nPlease submit a return as soon as possible.\n\nLabLink Inventory",
		req.Borrower.FullName, req.ID, itemName, req.Quantity, req.DueDate.Format("2006-01-02"))
	s.send(req.Borrower.Email, fmt.Sprintf("Borrow request #%d overdue", req.ID), body)
}

// NotifyMaintenanceFlagged tells technicians that a rule flagged items
func (s *NotificationService) NotifyMaintenanceFlagged(technicians []*models.User, ruleName string, itemCount int) {
	if itemCount == 0 {
		return
	}
	body := fmt.Sprintf(
		"Predictive maintenance rule %q flagged %d item(s).\nCheck the maintenance queue for new tickets.\n\nLabLink Inventory",
		ruleName, itemCount)
	for _, u := range technicians {
		s.send(u.Email, "Items flagged for maintenance", body)
	}
}
