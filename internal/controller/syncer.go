package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// Target is a store the Syncer keeps current.
type Target interface {
	// Slot is the slot name the target persists to.
	Slot() string
	// Watch reports changes to that slot made by other contexts.
	Watch() (<-chan v1alpha1.SlotEvent, func())
	// Refresh reloads the target from its slot.
	Refresh(ctx context.Context) error
}

// ErrAlreadyStarted is returned by Start and Register once the syncer runs.
var ErrAlreadyStarted = errors.New("syncer already started")

// Syncer reloads registered stores whenever another context writes their
// slot. Events for one slot that arrive while it is being reloaded collapse
// into a single follow-up reload.
type Syncer struct {
	mu      sync.Mutex
	targets map[string]Target
	queue   *WorkQueue
	logger  *zap.Logger
	onSync  []func(slot string)
	resync  time.Duration
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewSyncer creates a syncer with no targets.
func NewSyncer(logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		targets: make(map[string]Target),
		queue:   NewWorkQueue(),
		logger:  logger,
	}
}

// Register adds a target. Targets must be registered before Start.
func (s *Syncer) Register(t Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.targets[t.Slot()] = t
	return nil
}

// OnSync registers fn to run after each successful reload.
func (s *Syncer) OnSync(fn func(slot string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSync = append(s.onSync, fn)
}

// Start opens one watch per target and runs the worker. It returns
// immediately; call Stop to shut everything down.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for name, t := range s.targets {
		s.logger.Info("watching slot", zap.String("slot", name))
		events, cancelWatch := t.Watch()
		s.wg.Add(1)
		go s.watchLoop(ctx, name, events, cancelWatch)
	}

	if s.resync > 0 {
		s.wg.Add(1)
		go s.resyncLoop(ctx, s.resync)
	}

	s.wg.Add(1)
	go s.workerLoop(ctx)
	return nil
}

// watchLoop feeds events for one slot into the queue.
func (s *Syncer) watchLoop(ctx context.Context, name string, events <-chan v1alpha1.SlotEvent, cancelWatch func()) {
	defer s.wg.Done()
	defer cancelWatch()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Slot != name {
				continue
			}
			s.logger.Debug("slot changed elsewhere",
				zap.String("slot", evt.Slot),
				zap.String("type", string(evt.Type)),
				zap.String("origin", evt.Origin),
			)
			s.queue.Add(evt.Slot)
		}
	}
}

// workerLoop reloads targets as their slots come off the queue.
func (s *Syncer) workerLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		name, ok := s.queue.Get()
		if !ok {
			return
		}

		select {
		case <-ctx.Done():
			s.queue.Done(name)
			return
		default:
		}

		s.mu.Lock()
		t, known := s.targets[name]
		hooks := append([]func(string){}, s.onSync...)
		s.mu.Unlock()

		if !known {
			s.queue.Done(name)
			continue
		}

		if err := t.Refresh(ctx); err != nil {
			s.logger.Warn("reload failed", zap.String("slot", name), zap.Error(err))
			s.queue.Requeue(name)
			continue
		}

		s.logger.Debug("reloaded", zap.String("slot", name))
		s.queue.Forget(name)
		s.queue.Done(name)
		for _, fn := range hooks {
			fn(name)
		}
	}
}

// Stop cancels all watches, closes the queue and waits for the loops.
func (s *Syncer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.queue.Close()
	s.wg.Wait()
}
