package enrich

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"vodsync/models"
)

func TestEnrichFillsMetadata(t *testing.T) {
	lookup := func(ctx context.Context, title, year string) (*models.Metadata, error) {
		if title != "Matrix" {
			t.Errorf("expected cleaned title, got %q", title)
		}
		if year != "1999" {
			t.Errorf("expected extracted year, got %q", year)
		}
		return &models.Metadata{ExternalID: 603, Title: "Matrix"}, nil
	}

	item := &models.CatalogItem{Name: "Matrix (1999) [LEG]"}
	svc := New(lookup, Options{BatchDelay: time.Millisecond})

	failures := svc.Enrich(context.Background(), []Target{{Category: "acao", Item: item}})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if item.Metadata == nil || item.Metadata.ExternalID != 603 {
		t.Errorf("metadata not attached: %+v", item.Metadata)
	}
}

func TestEnrichCollectsFailures(t *testing.T) {
	lookup := func(ctx context.Context, title, year string) (*models.Metadata, error) {
		return nil, ErrNotFound
	}

	items := []Target{
		{Category: "acao", Item: &models.CatalogItem{Name: "Ghost Title"}},
		{Category: "drama", Item: &models.CatalogItem{Name: "Another Ghost"}},
	}
	svc := New(lookup, Options{BatchDelay: time.Millisecond})

	failures := svc.Enrich(context.Background(), items)
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
	for _, f := range failures {
		if f.Reason != ErrNotFound.Error() {
			t.Errorf("unexpected reason %q", f.Reason)
		}
	}
	for _, target := range items {
		if target.Item.Metadata != nil {
			t.Errorf("failed lookup must not attach metadata")
		}
	}
}

func TestEnrichDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	lookup := func(ctx context.Context, title, year string) (*models.Metadata, error) {
		calls.Add(1)
		return nil, ErrNotFound
	}

	svc := New(lookup, Options{BatchDelay: time.Millisecond})
	svc.Enrich(context.Background(), []Target{{Category: "acao", Item: &models.CatalogItem{Name: "Ghost"}}})

	if got := calls.Load(); got != 1 {
		t.Errorf("not-found should be definitive, got %d lookup calls", got)
	}
}

func TestEnrichRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	lookup := func(ctx context.Context, title, year string) (*models.Metadata, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("upstream hiccup")
		}
		return &models.Metadata{ExternalID: 1}, nil
	}

	item := &models.CatalogItem{Name: "Flaky"}
	svc := New(lookup, Options{BatchDelay: time.Millisecond})

	failures := svc.Enrich(context.Background(), []Target{{Category: "acao", Item: item}})
	if len(failures) != 0 {
		t.Fatalf("expected retry to succeed, got %+v", failures)
	}
	if item.Metadata == nil {
		t.Error("metadata should be attached after retry")
	}
}

func TestEnrichSkipsItemsWithMetadata(t *testing.T) {
	lookup := func(ctx context.Context, title, year string) (*models.Metadata, error) {
		t.Error("lookup should not be called for enriched items")
		return nil, ErrNotFound
	}

	item := &models.CatalogItem{Name: "Done", Metadata: &models.Metadata{ExternalID: 9}}
	svc := New(lookup, Options{BatchDelay: time.Millisecond})
	svc.Enrich(context.Background(), []Target{{Category: "acao", Item: item}})
}

func TestEnrichCancelSkipsRemainingBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	lookup := func(ctx context.Context, title, year string) (*models.Metadata, error) {
		calls.Add(1)
		cancel()
		return nil, ErrNotFound
	}

	targets := []Target{
		{Category: "acao", Item: &models.CatalogItem{Name: "One"}},
		{Category: "acao", Item: &models.CatalogItem{Name: "Two"}},
	}
	svc := New(lookup, Options{BatchSize: 1, Concurrency: 1, BatchDelay: time.Millisecond})
	svc.Enrich(ctx, targets)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected only the first batch to run, got %d calls", got)
	}
}

func TestWriteReport(t *testing.T) {
	fs := afero.NewMemMapFs()
	failures := []Failure{
		{Category: "acao", Name: "Ghost", Reason: "metadata not found"},
	}
	if err := WriteReport(fs, "report.txt", failures); err != nil {
		t.Fatal(err)
	}

	data, err := afero.ReadFile(fs, "report.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "acao | Ghost | metadata not found") {
		t.Errorf("report missing failure line:\n%s", data)
	}
}
