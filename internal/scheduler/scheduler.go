// Package scheduler runs recurring analysis batches on a cron schedule.
package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron-triggered analysis runs.
type Scheduler struct {
	Cron *cron.Cron
}

// New creates a scheduler using six-field cron expressions (with seconds).
func New() *Scheduler {
	return &Scheduler{Cron: cron.New(cron.WithSeconds())}
}

// Register schedules task under the given cron spec.
func (s *Scheduler) Register(spec string, task func()) error {
	if _, err := s.Cron.AddFunc(spec, task); err != nil {
		return fmt.Errorf("register schedule %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
