package enrich

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"

	"vodsync/models"
	"vodsync/utils/titles"
)

// ErrNotFound is returned by a LookupFunc when the external source has no
// record for the title. It is an expected outcome, not a transport failure.
var ErrNotFound = errors.New("metadata not found")

// LookupFunc is the external metadata collaborator. It must be idempotent:
// the service retries transient failures.
type LookupFunc func(ctx context.Context, title, year string) (*models.Metadata, error)

// Failure records one item that could not be enriched during a pass.
type Failure struct {
	Category string
	Name     string
	Reason   string
}

// Target is one catalog item to enrich. The item is mutated in place on
// success.
type Target struct {
	Category string
	Item     *models.CatalogItem
}

// Service runs metadata lookups in bounded batches with a delay between
// batches, so unattended passes stay inside upstream rate limits.
type Service struct {
	lookup        LookupFunc
	batchSize     int
	concurrency   int
	batchDelay    time.Duration
	lookupTimeout time.Duration
}

// Options tune the batching behaviour. Zero values fall back to defaults.
type Options struct {
	BatchSize     int
	Concurrency   int
	BatchDelay    time.Duration
	LookupTimeout time.Duration
}

// New creates an enrichment service around the given lookup collaborator.
func New(lookup LookupFunc, opts Options) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = 2 * time.Second
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 15 * time.Second
	}
	return &Service{
		lookup:        lookup,
		batchSize:     opts.BatchSize,
		concurrency:   opts.Concurrency,
		batchDelay:    opts.BatchDelay,
		lookupTimeout: opts.LookupTimeout,
	}
}

// Enrich looks up metadata for every target lacking it. Individual failures
// are collected and returned, never propagated: one bad title must not
// abort its siblings. On context cancellation the current batch finishes and
// the remaining batches are skipped.
func (s *Service) Enrich(ctx context.Context, targets []Target) []Failure {
	var (
		mu       sync.Mutex
		failures []Failure
	)

	for start := 0; start < len(targets); start += s.batchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[enrich] cancelled, skipping %d remaining targets", len(targets)-start)
				return failures
			case <-time.After(s.batchDelay):
			}
		}

		end := start + s.batchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		p := pool.New().WithMaxGoroutines(s.concurrency)
		for _, target := range batch {
			p.Go(func() {
				if err := s.enrichOne(ctx, target); err != nil {
					mu.Lock()
					failures = append(failures, Failure{
						Category: target.Category,
						Name:     target.Item.Name,
						Reason:   err.Error(),
					})
					mu.Unlock()
				}
			})
		}
		p.Wait()
	}

	return failures
}

func (s *Service) enrichOne(ctx context.Context, target Target) error {
	if target.Item.Metadata != nil {
		return nil
	}

	title := titles.CleanTitle(target.Item.Name)
	if title == "" {
		return errors.New("empty title after cleaning")
	}
	year := titles.ExtractYear(target.Item.Name)

	meta, err := retry.DoWithData(
		func() (*models.Metadata, error) {
			lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()
			return s.lookup(lookupCtx, title, year)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// Not-found is definitive; retrying cannot change it.
			return !errors.Is(err, ErrNotFound)
		}),
	)
	if err != nil {
		return err
	}

	target.Item.Metadata = meta
	return nil
}
