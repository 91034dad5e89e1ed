// Package scheduler drives the bank's background work: periodic autosave,
// the once-per-game-day batch, and scheduled inflation updates.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crystalrealm/ecobank/internal/config"
	"github.com/crystalrealm/ecobank/internal/gametime"
	"github.com/crystalrealm/ecobank/internal/services"
)

// dailyBatchDelay defers the first daily batch so startup load settles
// before the heaviest job runs.
const dailyBatchDelay = 60 * time.Second

// Scheduler runs the bank's recurring jobs on their own goroutines. A panic
// or error in one cycle is logged and the next cycle still runs.
type Scheduler struct {
	bank    *services.BankService
	cfg     *config.Config
	cal     gametime.Calendar
	logger  *slog.Logger
	enabled bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(bank *services.BankService, cfg *config.Config, cal gametime.Calendar, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		bank:   bank,
		cfg:    cfg,
		cal:    cal,
		logger: logger,
	}
}

// Start launches the background jobs. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	autosave := time.Duration(s.cfg.General.AutoSaveMinutes) * time.Minute
	s.spawn(ctx, "autosave", autosave, autosave, func() error {
		return s.bank.SaveAll()
	})

	s.spawn(ctx, "daily_batch", dailyBatchDelay, s.cal.DayLength(), func() error {
		return s.bank.RunDailyBatch()
	})

	if s.cfg.Inflation.Enabled {
		interval := time.Duration(s.cfg.Inflation.UpdateIntervalHours) * time.Hour
		s.spawn(ctx, "inflation", interval, interval, func() error {
			s.bank.UpdateInflation()
			return nil
		})
	}

	s.logger.Info("scheduler started",
		"autosave", autosave,
		"game_day", s.cal.DayLength(),
		"inflation", s.cfg.Inflation.Enabled)
}

// Stop cancels the jobs, waits for running cycles to finish, and performs a
// final save.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if err := s.bank.SaveAll(); err != nil {
		s.logger.Error("final save failed", "error", err)
		return
	}
	s.logger.Info("scheduler stopped, state saved")
}

// spawn runs job after delay, then every interval, until ctx is done.
func (s *Scheduler) spawn(ctx context.Context, name string, delay, interval time.Duration, job func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				s.runCycle(name, job)
				timer.Reset(interval)
			}
		}
	}()
}

// runCycle executes one job cycle, containing panics and logging errors so
// one bad cycle cannot kill the loop.
func (s *Scheduler) runCycle(name string, job func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", "job", name, "panic", r)
		}
	}()

	if err := job(); err != nil {
		s.logger.Error("job failed", "job", name, "error", err)
	}
}
