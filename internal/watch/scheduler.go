// Package watch runs recurring analysis and cache maintenance on cron
// schedules, for deployments that re-export the data file continuously.
package watch

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the recurring jobs.
type Scheduler struct {
	Cron      *cron.Cron
	AnalyzeFn func()
	CleanupFn func()
}

// NewScheduler creates a Scheduler around the two job callbacks.
func NewScheduler(analyze, cleanup func()) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		AnalyzeFn: analyze,
		CleanupFn: cleanup,
	}
}

// Register wires the analysis and cache-cleanup jobs to their schedules.
func (s *Scheduler) Register(analysisCron, cleanupCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.AnalyzeFn); err != nil {
		return fmt.Errorf("register analysis job: %w", err)
	}
	if _, err := s.Cron.AddFunc(cleanupCron, s.CleanupFn); err != nil {
		return fmt.Errorf("register cleanup job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] watch scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] watch scheduler stopped")
}
