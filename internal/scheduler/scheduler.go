package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	domrepo "StructScan/internal/domain/repository"
	"StructScan/internal/usecase"
	"StructScan/pkg/cache"
	applogger "StructScan/pkg/logger"
	"StructScan/pkg/util"
)

// Scheduler runs the whole-market scan on a cron schedule, publishes the
// result and refreshes the day's cache entry.
type Scheduler struct {
	cron      *cron.Cron
	scans     *usecase.ScanUseCase
	publisher domrepo.Publisher
	cache     cache.Service
	ttl       time.Duration
	symbols   []string
	l         *applogger.Logger
}

func New(scans *usecase.ScanUseCase, publisher domrepo.Publisher, c cache.Service, ttl time.Duration, symbols []string, l *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		scans:     scans,
		publisher: publisher,
		cache:     c,
		ttl:       ttl,
		symbols:   symbols,
		l:         l,
	}
}

// Register schedules the daily scan with a standard 5-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runScan); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.l.Info("scheduler stopped")
}

// RunNow executes the scan task immediately (manual trigger / run-on-start).
func (s *Scheduler) RunNow() {
	s.runScan()
}

func (s *Scheduler) runScan() {
	ctx := context.Background()
	start := time.Now()
	s.l.Info("scheduled scan starting", applogger.Strings("symbols", s.symbols))

	resp := s.scans.ScanAll(ctx, s.symbols, usecase.ScanOverrides{})

	ok, failed := 0, 0
	for _, e := range resp.Entries {
		if e.OK {
			ok++
		} else {
			failed++
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishScan(ctx, resp); err != nil {
			s.l.Error("scheduled scan publish failed", applogger.Error(err))
		}
	}

	if s.cache != nil {
		key := fmt.Sprintf("scan:all:%s", util.DayKey(resp.ScanDate))
		if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
			s.l.Warn("scheduled scan cache refresh failed", applogger.Error(err))
		}
	}

	s.l.Info("scheduled scan complete",
		applogger.Int("ok", ok),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
}
