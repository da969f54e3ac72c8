package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"vodsync/services/playlist"
	"vodsync/services/store"
	"vodsync/services/syncer"
)

type staticSource struct{ text string }

func (s staticSource) Fetch(ctx context.Context) (*playlist.Index, error) {
	return playlist.Parse(s.text), nil
}

// blockingSource parks every Fetch until release is closed, so tests can
// hold a pass in flight.
type blockingSource struct {
	release chan struct{}
	fetches atomic.Int32
}

func (s *blockingSource) Fetch(ctx context.Context) (*playlist.Index, error) {
	s.fetches.Add(1)
	<-s.release
	return playlist.Parse("#EXTM3U\n"), nil
}

func TestSchedulerRunsFirstPassImmediately(t *testing.T) {
	st := store.New(afero.NewMemMapFs(), "catalog")
	syncService := syncer.New(st, staticSource{text: `#EXTINF:-1 group-title="Ação",Matrix
http://cdn/matrix.mp4
`}, nil)

	sched := NewService(syncService, time.Hour)
	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer sched.Stop(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		manifest, err := st.ReadManifest()
		if err != nil {
			t.Fatal(err)
		}
		if manifest["acao"].TotalItems == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("first pass did not run within the deadline")
}

func TestSchedulerStopTimeoutKeepsLoopOwnership(t *testing.T) {
	st := store.New(afero.NewMemMapFs(), "catalog")
	src := &blockingSource{release: make(chan struct{})}
	sched := NewService(syncer.New(st, src, nil), time.Hour)

	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.fetches.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first pass never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sched.Stop(expired); err == nil {
		t.Fatal("expected an error when the wait for the current pass times out")
	}

	// The loop goroutine is still winding down, so this Start must be a
	// no-op; a second loop here would run a second pass.
	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	close(src.release)
	if err := sched.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := src.fetches.Load(); got != 1 {
		t.Fatalf("expected exactly one pass, got %d", got)
	}
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	st := store.New(afero.NewMemMapFs(), "catalog")
	syncService := syncer.New(st, staticSource{text: "#EXTM3U\n"}, nil)

	sched := NewService(syncService, time.Hour)
	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := sched.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
