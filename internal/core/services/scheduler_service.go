package services

import (
	"context"
	"log"
	"time"

	"lablink-inventory/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the recurring background jobs: the nightly
// predictive rule evaluation, overdue borrow reminders, and expired
// refresh token cleanup.
type SchedulerService struct {
	predictive       *PredictiveService
	borrow           *BorrowService
	notification     *NotificationService
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	predictive *PredictiveService,
	borrow *BorrowService,
	notification *NotificationService,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *SchedulerService {
	return &SchedulerService{
		predictive:       predictive,
		borrow:           borrow,
		notification:     notification,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start registers and launches all jobs
func (s *SchedulerService) Start() error {
	// Nightly rule evaluation at 02:00
	if _, err := s.cron.AddFunc("0 2 * * *", s.runRuleEvaluation); err != nil {
		return err
	}

	// Overdue reminders every morning at 08:00
	if _, err := s.cron.AddFunc("0 8 * * *", s.runOverdueReminders); err != nil {
		return err
	}

	// Expired refresh token cleanup every 6 hours
	if _, err := s.cron.AddFunc("0 */6 * * *", s.runTokenCleanup); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("scheduler started: 3 jobs registered")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("scheduler stopped")
}

func (s *SchedulerService) runRuleEvaluation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := s.predictive.Evaluate(ctx, 0, "scheduler")
	if err != nil {
		log.Printf("scheduled rule evaluation failed: %v", err)
		return
	}
	log.Printf("scheduled rule evaluation: %d rules, %d items flagged",
		summary.EvaluatedRules, summary.FlaggedItems)
}

func (s *SchedulerService) runOverdueReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	overdue, err := s.borrow.ListOverdue(ctx)
	if err != nil {
		log.Printf("overdue listing failed: %v", err)
		return
	}
	for _, req := range overdue {
		s.notification.NotifyBorrowOverdue(req)
	}
	if len(overdue) > 0 {
		log.Printf("overdue reminders sent for %d borrow requests", len(overdue))
	}
}

func (s *SchedulerService) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("expired token cleanup failed: %v", err)
	}
}
