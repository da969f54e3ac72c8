package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"vodsync/services/syncer"
)

// Service runs reconciliation passes on a fixed interval so the catalog
// keeps up with the upstream feed without anyone watching it.
type Service struct {
	syncService *syncer.Service
	interval    time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates a scheduler around the synchronizer.
func NewService(syncService *syncer.Service, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Service{
		syncService: syncService,
		interval:    interval,
	}
}

// Start begins the background loop. The first pass runs immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop()

	log.Printf("[scheduler] started, interval %s", s.interval)
	return nil
}

// Stop cancels the loop and waits for an in-flight pass to finish, bounded
// by ctx. Persistence is per category, so whatever completed is already on
// disk. When the wait times out the loop still owns its goroutine, so the
// scheduler stays marked running and a later Start is a no-op; call Stop
// again to finish the handover.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.running = false
		log.Println("[scheduler] stopped gracefully")
		return nil
	case <-ctx.Done():
		log.Println("[scheduler] stop timed out waiting for current pass")
		return ctx.Err()
	}
}

func (s *Service) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runPass()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runPass()
		}
	}
}

func (s *Service) runPass() {
	summary, err := s.syncService.Run(s.ctx)
	if err != nil {
		if errors.Is(err, syncer.ErrAlreadyRunning) {
			log.Println("[scheduler] previous pass still running, skipping")
			return
		}
		log.Printf("[scheduler] pass failed: %v", err)
		return
	}
	log.Printf("[scheduler] pass finished in %s (%d playlist entries, %d categories)",
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
		summary.PlaylistEntries, len(summary.Categories))
}
