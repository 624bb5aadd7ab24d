// Package scheduler keeps the linkage graph current without manual
// intervention: a recurring full-population analysis, a periodic cleanup of
// stale inactive edges, and an on-demand trigger used when a dossier is
// created or edited.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/argus-intel/argus/backend/pkg/analyzer"
	"github.com/argus-intel/argus/backend/pkg/leaselock"
	"github.com/argus-intel/argus/backend/pkg/logger"
	"github.com/argus-intel/argus/backend/pkg/store"
)

// Config holds the scheduler cadence. The scan interval is a single
// operator-chosen cadence; cleanup removes edges that have been inactive
// past StaleAfter.
type Config struct {
	ScanInterval    time.Duration
	CleanupInterval time.Duration
	StaleAfter      time.Duration
}

func (c Config) withDefaults() Config {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 5 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 24 * time.Hour
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 30 * 24 * time.Hour
	}
	return c
}

// Scheduler owns the recurring analysis and cleanup loops. Start and Stop
// are idempotent.
type Scheduler struct {
	analyzer *analyzer.Analyzer
	linkages store.LinkageStore
	cfg      Config

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a stopped scheduler.
func New(an *analyzer.Analyzer, linkages store.LinkageStore, cfg Config) *Scheduler {
	return &Scheduler{
		analyzer: an,
		linkages: linkages,
		cfg:      cfg.withDefaults(),
	}
}

// IsRunning reports whether the scheduler loops are active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the analysis and cleanup loops. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(2)
	go s.runScanLoop(loopCtx)
	go s.runCleanupLoop(loopCtx)

	logger.Info("[Scheduler] Started",
		"scan_interval", s.cfg.ScanInterval,
		"cleanup_interval", s.cfg.CleanupInterval,
	)
}

// Stop halts the loops and waits for them to exit. Calling Stop on a
// stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	logger.Info("[Scheduler] Stopped")
}

// TriggerImmediateAnalysis re-runs the full-population analysis on demand,
// for example after a new dossier is created. The profile identifier is only
// recorded for tracing; the pass always covers the whole population so
// every affected pair is refreshed.
func (s *Scheduler) TriggerImmediateAnalysis(ctx context.Context, profileID string) (analyzer.Result, error) {
	logger.Info("[Scheduler] Immediate analysis requested", "profile", profileID)
	return s.analyzer.RunFullAnalysis(ctx)
}

func (s *Scheduler) runScanLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := s.analyzer.RunFullAnalysis(ctx)
			switch {
			case err == nil:
			case errors.Is(err, analyzer.ErrScanInProgress), errors.Is(err, leaselock.ErrBusy):
				logger.Debug("[Scheduler] Scan still running, skipping tick")
			case ctx.Err() != nil:
				// Shutdown. A canceled pass whose own context is still alive
				// (a lost lease mid-scan) is an ordinary failure instead and
				// must not stop the ticker.
				return
			default:
				logger.Error("[Scheduler] Full analysis failed", "err", err)
			}
		}
	}
}

func (s *Scheduler) runCleanupLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-s.cfg.StaleAfter)
			deleted, err := s.linkages.DeleteStale(ctx, cutoff)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("[Scheduler] Linkage cleanup failed", "err", err)
				continue
			}
			if deleted > 0 {
				logger.Info("[Scheduler] Removed stale linkages", "count", deleted)
			}
		}
	}
}
