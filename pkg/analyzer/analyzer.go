// Package analyzer orchestrates full-population linkage analysis: pairwise
// comparison of every active dossier, idempotent edge upserts, and the
// per-profile suspicion rollup that follows a completed pass.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/linkage"
	"github.com/argus-intel/argus/backend/pkg/logger"
	"github.com/argus-intel/argus/backend/pkg/store"
)

// ErrScanInProgress is returned when a full analysis is requested while
// another one is still running in this process.
var ErrScanInProgress = errors.New("full analysis already in progress")

const (
	// suspiciousThreshold is the rollup score above which a profile is
	// flagged suspicious.
	suspiciousThreshold = 30
	// reasonThreshold is the minimum edge suspicion for an edge to appear
	// in a profile's suspicion reasons.
	reasonThreshold = 40
	// maxReasons caps the suspicion reasons stored per profile.
	maxReasons = 5
)

// Locker guards a full-population pass across processes. leaselock.Client
// satisfies it; a nil Locker limits the guard to this process.
type Locker interface {
	WithLease(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Result summarizes one completed full analysis pass.
type Result struct {
	LinkagesFound    int       `json:"linkages_found"`
	ProfilesAnalyzed int       `json:"profiles_analyzed"`
	CompletedAt      time.Time `json:"completed_at"`
}

// Analyzer runs full-population linkage analysis against the profile and
// linkage stores.
type Analyzer struct {
	profiles store.ProfileStore
	linkages store.LinkageStore
	lock     Locker

	mu         sync.Mutex
	scanning   bool
	lastResult *Result
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLocker adds a cross-process guard around each full pass.
func WithLocker(lock Locker) Option {
	return func(a *Analyzer) {
		a.lock = lock
	}
}

// New creates an Analyzer over the given stores.
func New(profiles store.ProfileStore, linkages store.LinkageStore, opts ...Option) *Analyzer {
	a := &Analyzer{
		profiles: profiles,
		linkages: linkages,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// IsScanning reports whether a pass is currently running in this process.
func (a *Analyzer) IsScanning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scanning
}

// LastResult returns the most recent completed pass, if any.
func (a *Analyzer) LastResult() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastResult == nil {
		return Result{}, false
	}
	return *a.lastResult, true
}

// RunFullAnalysis compares every unordered pair of active profiles, upserts
// the detected linkages, and recomputes every profile's rollup. It reads a
// snapshot of the population at the start of the pass; edits made during the
// scan are picked up by the next one.
//
// A storage failure aborts the remainder of the pass: edges upserted by
// earlier pairs stay committed and the rollup for remaining profiles is
// skipped until the next trigger.
func (a *Analyzer) RunFullAnalysis(ctx context.Context) (Result, error) {
	a.mu.Lock()
	if a.scanning {
		a.mu.Unlock()
		return Result{}, ErrScanInProgress
	}
	a.scanning = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.scanning = false
		a.mu.Unlock()
	}()

	if a.lock == nil {
		return a.runLocked(ctx)
	}

	var result Result
	err := a.lock.WithLease(ctx, "linkage_full_scan", func(ctx context.Context) error {
		var err error
		result, err = a.runLocked(ctx)
		return err
	})
	return result, err
}

func (a *Analyzer) runLocked(ctx context.Context) (Result, error) {
	started := time.Now()
	profiles, err := a.profiles.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load active profiles: %w", err)
	}
	logger.Debug("[Analyze] Starting full pass", "profiles", len(profiles))

	now := time.Now().UTC()
	found := 0
	for i := range profiles {
		for j := i + 1; j < len(profiles); j++ {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}

			res := linkage.Compare(&profiles[i], &profiles[j])
			if res == nil {
				continue
			}

			p1, p2 := common.CanonicalPair(profiles[i].ID, profiles[j].ID)
			err := a.linkages.Upsert(ctx, common.Linkage{
				Profile1:       p1,
				Profile2:       p2,
				ConnectionType: res.ConnectionType,
				MatchedFields:  res.MatchedFields,
				Strength:       res.Strength,
				SuspicionScore: res.SuspicionScore,
				Details:        res.Details,
				LastAnalyzed:   now,
				IsActive:       true,
			})
			if err != nil {
				return Result{}, fmt.Errorf("upsert linkage %s/%s: %w", p1, p2, err)
			}
			found++
		}
	}

	if err := a.recomputeRollups(ctx, profiles, now); err != nil {
		return Result{}, err
	}

	result := Result{
		LinkagesFound:    found,
		ProfilesAnalyzed: len(profiles),
		CompletedAt:      now,
	}
	a.mu.Lock()
	a.lastResult = &result
	a.mu.Unlock()

	logger.Info("[Analyze] Full pass completed",
		"profiles", result.ProfilesAnalyzed,
		"linkages", result.LinkagesFound,
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return result, nil
}

// recomputeRollups rewrites the derived suspicion fields of every profile in
// the snapshot from the active edges touching it.
func (a *Analyzer) recomputeRollups(ctx context.Context, profiles []common.Profile, now time.Time) error {
	nameByID := make(map[string]string, len(profiles))
	for _, p := range profiles {
		nameByID[p.ID] = p.FullName
	}

	for _, p := range profiles {
		edges, err := a.linkages.FindByProfile(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load linkages for %s: %w", p.ID, err)
		}

		fields := rollupFields(p.ID, edges, nameByID)
		fields.LastAnalyzed = now
		if err := a.profiles.UpdateDerived(ctx, p.ID, fields); err != nil {
			return fmt.Errorf("update rollup for %s: %w", p.ID, err)
		}
	}
	return nil
}

// rollupFields computes the derived fields of one profile from its edges:
// score is a 30/70 blend of average and maximum edge suspicion, and reasons
// list the highest-suspicion edges above the reason threshold.
func rollupFields(profileID string, edges []common.Linkage, nameByID map[string]string) store.DerivedFields {
	if len(edges) == 0 {
		return store.DerivedFields{}
	}

	sum := 0
	maxScore := 0
	for _, e := range edges {
		sum += e.SuspicionScore
		if e.SuspicionScore > maxScore {
			maxScore = e.SuspicionScore
		}
	}
	avg := float64(sum) / float64(len(edges))
	score := int(math.Round(avg*0.3 + float64(maxScore)*0.7))

	sorted := make([]common.Linkage, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SuspicionScore > sorted[j].SuspicionScore
	})

	var reasons []string
	for _, e := range sorted {
		if e.SuspicionScore <= reasonThreshold {
			continue
		}
		other := e.Profile1
		if other == profileID {
			other = e.Profile2
		}
		name := nameByID[other]
		if name == "" {
			name = other
		}
		reasons = append(reasons, fmt.Sprintf("%s linkage with %s (%d%%)", e.ConnectionType, name, e.Strength))
		if len(reasons) == maxReasons {
			break
		}
	}

	return store.DerivedFields{
		SuspicionScore:   score,
		IsSuspicious:     score > suspiciousThreshold,
		LinkageCount:     len(edges),
		SuspicionReasons: reasons,
	}
}
