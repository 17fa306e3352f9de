// Package content implements the post and project stores that back the
// agency site: an authoritative in-memory collection per entity type,
// persisted as one slot through a slot.Adapter and seeded from bundled
// defaults.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/klubi/folio/internal/slot"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// State is the lifecycle phase of a Store.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Entity is a record a Store can hold.
type Entity interface {
	Key() string
}

// Kind describes one entity type to a Store.
type Kind[T Entity] struct {
	// Name is the resource kind, e.g. v1alpha1.KindPost.
	Name string
	// Preserved lists JSON field names Update never overwrites.
	Preserved []string
	// Build turns admin-entered fields into a complete record: it derives the
	// key, stamps creation time and validates. It must not mutate shared state.
	Build func(fields T, now time.Time) (T, error)
	// Validate checks a merged record after Update.
	Validate func(T) error
}

// Option configures a Store.
type Option func(*options)

type options struct {
	loadTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// WithLoadTimeout bounds how long Load waits for the backend before falling
// back to the bundled defaults. Zero disables the guard.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) { o.loadTimeout = d }
}

// WithClock overrides the time source used for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Store owns one entity collection. All methods are safe for concurrent use;
// operations are applied in call order and each mutation is persisted before
// the next one starts.
type Store[T Entity] struct {
	mu          sync.Mutex
	kind        Kind[T]
	slotName    string
	adapter     *slot.Adapter[T]
	defaults    []T
	items       []T
	state       State
	loadTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger

	listenersMu sync.Mutex
	listeners   []func([]T)
}

// NewStore creates an Uninitialized store for slotName. defaults is the
// bundled dataset used for seeding; it is copied and never mutated.
func NewStore[T Entity](kind Kind[T], adapter *slot.Adapter[T], slotName string, defaults []T, opts ...Option) *Store[T] {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		kind:        kind,
		slotName:    slotName,
		adapter:     adapter,
		defaults:    cloneItems(defaults),
		loadTimeout: o.loadTimeout,
		now:         o.now,
		logger: o.logger.With(
			zap.String("kind", kind.Name),
			zap.String("slot", slotName),
			zap.String("origin", adapter.Origin()),
		),
	}
}

// Slot returns the name of the slot this store persists to.
func (s *Store[T]) Slot() string { return s.slotName }

// Kind returns the resource kind name.
func (s *Store[T]) Kind() string { return s.kind.Name }

// State returns the current lifecycle phase.
func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers fn to receive a snapshot after every load and mutation.
func (s *Store[T]) OnChange(fn func(items []T)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Watch reports changes to this store's slot made by other contexts.
func (s *Store[T]) Watch() (<-chan v1alpha1.SlotEvent, func()) {
	return s.adapter.Watch(s.slotName)
}

// ---------- Loading ----------

// ErrLoadTimeout is returned by Refresh when the backend did not answer
// within the store's load timeout.
var ErrLoadTimeout = errors.New("content: load timed out")

// Load (re)reads the slot. A missing or undecodable slot is replaced by the
// defaults, which are written back best-effort. A backend read failure never
// seeds: a reload keeps the current collection and a first load falls back
// to the defaults in memory only. The store always ends Ready, even when the
// read fails, times out or ctx is cancelled.
func (s *Store[T]) Load(ctx context.Context) {
	_ = s.Refresh(ctx)
}

// Refresh replaces the in-memory collection with the slot contents. It
// returns the read error, ErrLoadTimeout or ctx.Err() when the slot could
// not be read, so callers can retry.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	err := s.loadLocked(ctx)
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.emit(snapshot)
	return err
}

type readResult[T any] struct {
	items []T
	found bool
	err   error
}

// loadLocked must be called with s.mu held.
func (s *Store[T]) loadLocked(ctx context.Context) error {
	wasReady := s.state == Ready
	s.state = Loading
	defer func() { s.state = Ready }()

	resultCh := make(chan readResult[T], 1)
	go func() {
		items, found, err := s.adapter.Read(s.slotName)
		resultCh <- readResult[T]{items: items, found: found, err: err}
	}()

	var timeout <-chan time.Time
	if s.loadTimeout > 0 {
		timer := time.NewTimer(s.loadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-resultCh:
		if res.err != nil {
			s.abandonLoadLocked(wasReady, "reading slot failed", zap.Error(res.err))
			return res.err
		}
		if res.found {
			s.items = res.items
			return nil
		}
		s.logger.Info("seeding slot from defaults", zap.Int("count", len(s.defaults)))
		s.items = cloneItems(s.defaults)
		s.persistLocked()
		return nil
	case <-timeout:
		s.abandonLoadLocked(wasReady, "load timed out", zap.Duration("timeout", s.loadTimeout))
		return ErrLoadTimeout
	case <-ctx.Done():
		s.abandonLoadLocked(wasReady, "load cancelled", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// abandonLoadLocked settles a read that did not produce a collection. A store
// that was never Ready falls back to the defaults without seeding; a reload
// keeps what it already has.
func (s *Store[T]) abandonLoadLocked(wasReady bool, msg string, field zap.Field) {
	if wasReady {
		s.logger.Warn(msg+", keeping current collection", field)
		return
	}
	s.logger.Warn(msg+", using defaults", field)
	s.items = cloneItems(s.defaults)
}

// ensureLoadedLocked loads the store on first use so a mutation never
// overwrites a slot it has not read. Must be called with s.mu held.
func (s *Store[T]) ensureLoadedLocked() {
	if s.state == Uninitialized {
		_ = s.loadLocked(context.Background())
	}
}

// ---------- Reads ----------

// List returns a copy of the collection in display order.
func (s *Store[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()
	return cloneItems(s.items)
}

// Get looks key up in memory. No I/O is performed once the store is Ready.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	if i := s.indexLocked(key); i >= 0 {
		return cloneItem(s.items[i]), true
	}
	var zero T
	return zero, false
}

// ---------- Mutations ----------

// Add builds a record from fields, prepends it and persists. An invalid
// record is rejected with a *ValidationError and the store is unchanged.
// A derived key that collides with an existing record is not rejected; the
// older record becomes unreachable through Get.
func (s *Store[T]) Add(fields T) (T, error) {
	s.mu.Lock()
	s.ensureLoadedLocked()

	item, err := s.kind.Build(cloneItem(fields), s.now())
	if err != nil {
		s.mu.Unlock()
		var zero T
		return zero, err
	}
	if s.indexLocked(item.Key()) >= 0 {
		s.logger.Warn("derived key collides with an existing record", zap.String("key", item.Key()))
	}

	s.items = append([]T{item}, s.items...)
	s.persistLocked()
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.emit(snapshot)
	return cloneItem(item), nil
}

// Put stores a record that already carries its key, such as one converted
// from the legacy shape. No key is derived and no creation time is stamped;
// the record is only validated. An existing record with the same key is
// replaced in place, otherwise the record is prepended. The boolean reports
// whether a record was replaced.
func (s *Store[T]) Put(item T) (T, bool, error) {
	var zero T
	item = cloneItem(item)
	if s.kind.Validate != nil {
		if err := s.kind.Validate(item); err != nil {
			return zero, false, err
		}
	}

	s.mu.Lock()
	s.ensureLoadedLocked()

	i := s.indexLocked(item.Key())
	if i >= 0 {
		s.items[i] = item
	} else {
		s.items = append([]T{item}, s.items...)
	}
	s.persistLocked()
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.emit(snapshot)
	return cloneItem(item), i >= 0, nil
}

// Update shallow-merges fields (JSON field names) into the record with key.
// Preserved fields are left untouched. The boolean is false when no record
// has that key, in which case nothing happens. A merge that introduces a
// validation problem is rejected with an error and the store is unchanged;
// problems the stored record already had do not block the update.
func (s *Store[T]) Update(key string, fields map[string]interface{}) (T, bool, error) {
	var zero T

	s.mu.Lock()
	s.ensureLoadedLocked()

	i := s.indexLocked(key)
	if i < 0 {
		s.mu.Unlock()
		return zero, false, nil
	}

	merged, err := mergeFields(s.items[i], fields, s.kind.Preserved)
	if err == nil && s.kind.Validate != nil {
		err = introducedProblems(s.kind.Validate(merged), s.kind.Validate(s.items[i]))
	}
	if err != nil {
		s.mu.Unlock()
		return zero, true, err
	}

	s.items[i] = merged
	s.persistLocked()
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.emit(snapshot)
	return cloneItem(merged), true, nil
}

// Delete removes every record with key and persists the result, even when
// nothing matched. It reports whether anything was removed.
func (s *Store[T]) Delete(key string) bool {
	s.mu.Lock()
	s.ensureLoadedLocked()

	kept := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if item.Key() != key {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(s.items)
	s.items = kept
	s.persistLocked()
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.emit(snapshot)
	return removed
}

// reset clears the slot and replaces the collection with items.
func (s *Store[T]) reset(items []T) []T {
	s.mu.Lock()
	if err := s.adapter.Clear(s.slotName); err != nil {
		s.logger.Warn("clearing slot failed", zap.Error(err))
	}
	s.items = cloneItems(items)
	s.state = Ready
	s.persistLocked()
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.emit(snapshot)
	return cloneItems(snapshot)
}

// ---------- internal ----------

// persistLocked writes the collection best-effort. A failed write leaves
// memory as it is. Must be called with s.mu held.
func (s *Store[T]) persistLocked() {
	if err := s.adapter.Write(s.slotName, s.items); err != nil {
		s.logger.Warn("persisting slot failed, keeping in-memory state", zap.Error(err))
	}
}

// indexLocked returns the position of the first record with key, or -1.
func (s *Store[T]) indexLocked(key string) int {
	for i, item := range s.items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store[T]) emit(snapshot []T) {
	s.listenersMu.Lock()
	listeners := make([]func([]T), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(cloneItems(snapshot))
	}
}

// mergeFields overlays fields onto item's JSON form, skipping preserved names.
func mergeFields[T any](item T, fields map[string]interface{}, preserved []string) (T, error) {
	var zero T

	base, err := json.Marshal(item)
	if err != nil {
		return zero, err
	}
	obj := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &obj); err != nil {
		return zero, err
	}

	for name, value := range fields {
		if contains(preserved, name) {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return zero, err
		}
		obj[name] = raw
	}

	merged, err := json.Marshal(obj)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// deepCopier is implemented by records holding slices or pointers.
type deepCopier[T any] interface {
	DeepCopy() T
}

func cloneItem[T any](item T) T {
	if dc, ok := any(item).(deepCopier[T]); ok {
		return dc.DeepCopy()
	}
	return item
}

// cloneItems copies items so that no caller shares memory with the store.
func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

// introducedProblems drops from after the problems already present in
// before. Errors that are not a *ValidationError pass through unchanged.
func introducedProblems(after, before error) error {
	var afterErr, beforeErr *ValidationError
	if !errors.As(after, &afterErr) || !errors.As(before, &beforeErr) {
		return after
	}
	var problems []string
	for _, p := range afterErr.Problems {
		if !contains(beforeErr.Problems, p) {
			problems = append(problems, p)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Kind: afterErr.Kind, Problems: problems}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
