package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a five-field cron schedule string.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// CleanupEnqueuer hands a cleanup run to the task queue.
type CleanupEnqueuer interface {
	EnqueueCleanup(task tasks.CleanupImportsTask) error
}

// CleanupScheduler periodically applies the retention policy to import
// sessions, audit events and archived payloads. With an enqueuer the run
// goes through the task queue; without one it runs inline.
type CleanupScheduler struct {
	cleaner  *tasks.Cleaner
	enqueuer CleanupEnqueuer
	schedule string
	enabled  bool
	task     tasks.CleanupImportsTask

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCleanupScheduler creates a new scheduler instance. enqueuer may be nil.
func NewCleanupScheduler(cfg config.Cleanup, auditCfg config.Audit, cleaner *tasks.Cleaner, enqueuer CleanupEnqueuer) *CleanupScheduler {
	return &CleanupScheduler{
		cleaner:  cleaner,
		enqueuer: enqueuer,
		schedule: cfg.Schedule,
		enabled:  cfg.Enabled,
		task: tasks.CleanupImportsTask{
			SessionRetention: cfg.SessionRetention,
			RetentionDays:    auditCfg.RetentionDays,
		},
		cron: cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if cleanup is enabled
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.enabled {
		log.Printf("[SCHEDULER] Cleanup scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(context.Background()); err != nil {
			log.Printf("[SCHEDULER] Cleanup failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Cleanup scheduler: started with schedule '%s'. Next run: %v",
		s.schedule, nextRun(s.schedule, time.Now()))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running cleanup to finish and stops the scheduler.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("[SCHEDULER] Cleanup scheduler: stopped")
}

// RunNow triggers a cleanup immediately.
func (s *CleanupScheduler) RunNow(ctx context.Context) error {
	if s.enqueuer != nil {
		return s.enqueuer.EnqueueCleanup(s.task)
	}
	return s.cleaner.Run(ctx, s.task)
}

// IsRunning returns whether the scheduler is active
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur
func (s *CleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
		return &next
	}
	next := nextRun(s.schedule, time.Now())
	return &next
}

func nextRun(schedule string, from time.Time) time.Time {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from)
}
