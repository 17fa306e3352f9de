package controller

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SetResyncInterval makes the syncer reload every target on a timer in
// addition to reacting to slot events. The sqlite backend only reports
// writes made through its own handle, so another process writing the same
// database file is picked up here. bbolt holds an exclusive lock on its file
// and never has such a writer. A zero interval disables it. Must be called
// before Start.
func (s *Syncer) SetResyncInterval(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.resync = d
	return nil
}

// resyncLoop enqueues every target each interval. Slots already queued
// collapse with the pending item.
func (s *Syncer) resyncLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			names := make([]string, 0, len(s.targets))
			for name := range s.targets {
				names = append(names, name)
			}
			s.mu.Unlock()

			s.logger.Debug("periodic resync", zap.Int("targets", len(names)))
			for _, name := range names {
				s.queue.Add(name)
			}
		}
	}
}
