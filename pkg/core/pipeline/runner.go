package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"telecom_subsidy/pkg/core/store"
	"telecom_subsidy/pkg/models"
)

// TupleFailure records a tuple rejected by a configuration error.
type TupleFailure struct {
	Key models.RunKey
	Err error
}

// BatchResult holds the results of one RunAll call in input order.
type BatchResult struct {
	RunID    string
	Results  []*models.TupleResult
	Failed   []TupleFailure
	Cached   int
	Duration time.Duration
}

// Runner executes independent tuples in parallel.
type Runner struct {
	orch    *Orchestrator
	workers int
	cache   *store.ResultCache
	logger  arbor.ILogger
}

// NewRunner creates a runner with at most workers tuples in flight.
func NewRunner(orch *Orchestrator, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{orch: orch, workers: workers, logger: orch.logger}
}

// SetCache enables result reuse for tuples whose inputs are unchanged.
func (r *Runner) SetCache(cache *store.ResultCache) {
	r.cache = cache
}

// RunAll runs every tuple. Tuples failing with a recoverable error are
// listed in Failed; any other error cancels the batch.
func (r *Runner) RunAll(ctx context.Context, tuples []Tuple) (*BatchResult, error) {
	start := time.Now()
	batch := &BatchResult{
		RunID:   uuid.NewString(),
		Results: make([]*models.TupleResult, len(tuples)),
	}

	r.logger.Info().
		Str("run_id", batch.RunID).
		Int("tuples", len(tuples)).
		Int("workers", r.workers).
		Msg("Starting batch")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range tuples {
		t := tuples[i]
		if t.Key.RunID == "" {
			t.Key.RunID = batch.RunID
		}

		g.Go(func() error {
			res, cached, err := r.runOne(gctx, t)
			if err != nil {
				if !models.IsRecoverable(err) {
					return fmt.Errorf("tuple %s/%s/%s: %w", t.Key.Country, t.Key.Scenario, t.Key.Strategy, err)
				}
				r.logger.Warn().
					Str("country", t.Key.Country).
					Str("scenario", t.Key.Scenario).
					Str("strategy", t.Key.Strategy).
					Err(err).
					Msg("Skipping tuple")
				mu.Lock()
				batch.Failed = append(batch.Failed, TupleFailure{Key: t.Key, Err: err})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			batch.Results[i] = res
			if cached {
				batch.Cached++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Drop the slots of failed tuples, keeping input order.
	kept := batch.Results[:0]
	for _, res := range batch.Results {
		if res != nil {
			kept = append(kept, res)
		}
	}
	batch.Results = kept
	batch.Duration = time.Since(start)

	r.logger.Info().
		Str("run_id", batch.RunID).
		Int("completed", len(batch.Results)).
		Int("cached", batch.Cached).
		Int("failed", len(batch.Failed)).
		Str("duration", batch.Duration.String()).
		Msg("Batch complete")

	return batch, nil
}

// settings collects the run-level choices that feed the cache key.
func (t Tuple) settings() store.RunSettings {
	s := store.RunSettings{Years: t.Years, Policy: string(t.Policy)}
	if t.Global != nil {
		s.BaseYear = t.Global.BaseYear
	}
	return s
}

func (r *Runner) runOne(ctx context.Context, t Tuple) (*models.TupleResult, bool, error) {
	var fingerprint string
	if r.cache != nil && t.Inputs != "" {
		fingerprint = store.Fingerprint(t.Key, t.settings(), t.Inputs)
		hit, err := r.cache.Get(fingerprint)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Ignoring unreadable cache entry")
		}
		if hit != nil {
			hit.Key.RunID = t.Key.RunID
			for i := range hit.Annual {
				hit.Annual[i].RunKey = hit.Key
			}
			hit.Summary.RunKey = hit.Key
			if err := r.orch.save(ctx, hit); err != nil {
				return nil, false, err
			}
			return hit, true, nil
		}
	}

	res, err := r.orch.RunTuple(ctx, t)
	if err != nil {
		return nil, false, err
	}

	if fingerprint != "" {
		if err := r.cache.Put(fingerprint, res); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to cache tuple result")
		}
	}
	return res, false, nil
}
