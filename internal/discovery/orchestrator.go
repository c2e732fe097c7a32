// Package discovery fans the registered handlers out over a bounded worker
// pool and collects their records. A failing resource type never aborts the
// run; only context cancellation does.
package discovery

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aws-graphx/internal/cloud"
	"aws-graphx/internal/registry"
	"aws-graphx/internal/resource"
)

const (
	// DefaultMaxWorkers is the primary pool size when none is configured.
	DefaultMaxWorkers = 10

	// MaxWorkersCeiling caps the primary pool regardless of configuration.
	MaxWorkersCeiling = 50

	// DefaultDescriptionWorkers sizes the secondary pool for per-resource
	// detail fetches.
	DefaultDescriptionWorkers = 5
)

// Options configures one discovery run.
type Options struct {
	// MaxWorkers bounds concurrent resource-type tasks. Clamped to
	// [1, MaxWorkersCeiling]; zero selects the default.
	MaxWorkers int

	// DescriptionWorkers bounds concurrent detail fetches. Zero selects
	// the default.
	DescriptionWorkers int

	// Exclude removes individual resource types from the run.
	Exclude map[string]bool

	// RunID tags the run; generated when empty.
	RunID string
}

// Result is the outcome of a run. Resources is sorted by composite key, so
// identical inputs produce identical output regardless of worker count.
type Result struct {
	RunID          string
	Resources      []resource.Record
	Errors         map[string][]error
	TypesSucceeded int
	TypesFailed    int

	// FailedTypes names the resource types whose listing failed, sorted.
	// Types that listed fine but had detail-fetch errors appear in Errors
	// without being listed here.
	FailedTypes []string

	Duration time.Duration
}

// update is one message from a worker to the collector.
type update struct {
	resourceType string
	records      []resource.Record
	err          error
	listFailure  bool
}

type task struct {
	handler      registry.Handler
	resourceType string
}

// Run discovers all resource types of the given handlers. Per-type failures
// are recorded in Result.Errors and isolated; the returned error is non-nil
// only for context cancellation, and the partial Result is still returned
// alongside it.
func Run(ctx context.Context, api cloud.API, handlers []registry.Handler, opts Options, log zerolog.Logger) (*Result, error) {
	start := time.Now()

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	if workers > MaxWorkersCeiling {
		workers = MaxWorkersCeiling
	}
	descWorkers := opts.DescriptionWorkers
	if descWorkers <= 0 {
		descWorkers = DefaultDescriptionWorkers
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log = log.With().Str("component", "discovery").Str("run_id", runID).Logger()

	var tasks []task
	for _, h := range handlers {
		for _, t := range h.ResourceTypes() {
			if opts.Exclude[t] {
				log.Debug().Str("resource_type", t).Msg("excluded resource type")
				continue
			}
			tasks = append(tasks, task{handler: h, resourceType: t})
		}
	}
	log.Info().
		Int("resource_types", len(tasks)).
		Int("workers", workers).
		Msg("starting discovery")

	res := &Result{
		RunID:  runID,
		Errors: make(map[string][]error),
	}
	failed := make(map[string]bool)
	index := make(map[string]int)
	var ordered []resource.Record

	updates := make(chan update, workers)
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for u := range updates {
			if u.err != nil {
				res.Errors[u.resourceType] = append(res.Errors[u.resourceType], u.err)
				if u.listFailure {
					failed[u.resourceType] = true
				}
				log.Warn().
					Str("resource_type", u.resourceType).
					Err(u.err).
					Msg("resource type failed")
				continue
			}
			for _, rec := range u.records {
				// The detail pass can emit synthetic sub-resource types
				// that never appear as primary tasks; exclusion covers
				// those too.
				if opts.Exclude[rec.Type] {
					continue
				}
				key := rec.Key()
				if i, ok := index[key]; ok {
					// Detail pass re-emitted the record with full properties.
					ordered[i] = rec
				} else {
					index[key] = len(ordered)
					ordered = append(ordered, rec)
				}
			}
		}
	}()

	var primary, detail errgroup.Group
	primary.SetLimit(workers)
	detail.SetLimit(descWorkers)

	for _, tk := range tasks {
		tk := tk
		primary.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := tk.handler.Discover(ctx, api, tk.resourceType)
			if err != nil {
				if isCancellation(err) {
					return err
				}
				updates <- update{resourceType: tk.resourceType, err: err, listFailure: true}
				return nil
			}
			updates <- update{resourceType: tk.resourceType, records: records}

			describer, ok := tk.handler.(registry.Describer)
			if !ok {
				return nil
			}
			for _, rec := range records {
				rec := rec
				detail.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					extra, derr := describer.Describe(ctx, api, rec)
					if derr != nil {
						if isCancellation(derr) {
							return derr
						}
						updates <- update{resourceType: tk.resourceType, err: derr}
						return nil
					}
					if len(extra) > 0 {
						updates <- update{resourceType: tk.resourceType, records: extra}
					}
					return nil
				})
			}
			return nil
		})
	}

	primaryErr := primary.Wait()
	detailErr := detail.Wait()
	close(updates)
	<-collectorDone

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key() < ordered[j].Key() })
	res.Resources = ordered
	res.FailedTypes = make([]string, 0, len(failed))
	for t := range failed {
		res.FailedTypes = append(res.FailedTypes, t)
	}
	sort.Strings(res.FailedTypes)
	res.TypesFailed = len(res.FailedTypes)
	res.TypesSucceeded = len(tasks) - len(failed)
	res.Duration = time.Since(start)

	log.Info().
		Int("resources", len(res.Resources)).
		Int("types_succeeded", res.TypesSucceeded).
		Int("types_failed", res.TypesFailed).
		Dur("duration", res.Duration).
		Msg("discovery finished")

	if primaryErr != nil {
		return res, primaryErr
	}
	if detailErr != nil {
		return res, detailErr
	}
	return res, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
