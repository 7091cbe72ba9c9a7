package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rcliao/itinerary/internal/metrics"
	"github.com/rcliao/itinerary/internal/model"
)

// Pool runs generation requests off the caller's goroutine with a bounded
// number of concurrent runs. A run that misses its deadline keeps its worker
// slot until it finishes, and its plan is dropped without being persisted.
type Pool struct {
	orch    *Orchestrator
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewPool returns a pool of the given width. timeout <= 0 means runs are
// bounded only by the caller's context.
func NewPool(orch *Orchestrator, workers int, timeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{orch: orch, sem: semaphore.NewWeighted(int64(workers)), timeout: timeout}
}

type built struct {
	plan *model.ItineraryPlan
	err  error
}

// Generate waits for a worker slot, races the pipeline against the deadline
// and persists the plan only when it arrived in time.
func (p *Pool) Generate(ctx context.Context, req Request) (*model.ItineraryPlan, error) {
	start := time.Now()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		metrics.PlanGenerated(string(req.Mode), "timeout", time.Since(start))
		return nil, fmt.Errorf("wait for planning worker: %w", err)
	}
	metrics.PoolAcquired()

	done := make(chan built, 1)
	go func() {
		defer func() {
			p.sem.Release(1)
			metrics.PoolReleased()
		}()
		plan, err := p.orch.Build(ctx, req)
		done <- built{plan: plan, err: err}
	}()

	select {
	case b := <-done:
		return p.orch.finish(ctx, req, b.plan, b.err, start)
	case <-ctx.Done():
		metrics.PoolTimeout()
		metrics.PlanGenerated(string(req.Mode), "timeout", time.Since(start))
		slog.Warn("itinerary generation abandoned",
			"profile_id", req.ProfileID,
			"center_id", req.CenterID,
			"err", ctx.Err())
		return nil, fmt.Errorf("generate itinerary: %w", ctx.Err())
	}
}
