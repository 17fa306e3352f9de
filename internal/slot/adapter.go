// Package slot translates between typed in-memory collections and a single
// named slot in a storage backend.
//
// Each Adapter carries an origin: the identity of the context (a server, a
// terminal session, a test "tab") on whose behalf it reads and writes. Watch
// only reports changes made under a different origin, so a context never
// observes its own writes through the notification path.
package slot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/klubi/folio/internal/store"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// WriteError reports a failed persist. Callers keep their in-memory state.
type WriteError struct {
	Slot string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing slot %q: %v", e.Slot, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// NewOrigin returns a fresh, unique context identity.
func NewOrigin() string {
	return uuid.NewString()
}

// Adapter reads and writes collections of T against a Backend.
type Adapter[T any] struct {
	backend store.Backend
	origin  string
	logger  *zap.Logger
}

// New creates an adapter writing under origin. An empty origin gets a fresh
// one from NewOrigin.
func New[T any](backend store.Backend, origin string, logger *zap.Logger) *Adapter[T] {
	if origin == "" {
		origin = NewOrigin()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter[T]{
		backend: backend,
		origin:  origin,
		logger:  logger.With(zap.String("origin", origin)),
	}
}

// Origin returns the context identity this adapter writes under.
func (a *Adapter[T]) Origin() string { return a.origin }

// Read returns the collection stored at name. The boolean is false when the
// slot is absent, not valid JSON, not a JSON array of T, or null; all of
// these are treated alike so the caller can fall back to defaults. A backend
// failure other than store.ErrNotFound is returned as an error instead, since
// the slot may well hold data that could not be reached.
func (a *Adapter[T]) Read(name string) ([]T, bool, error) {
	raw, err := a.backend.Get(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading slot %q: %w", name, err)
	}

	items, err := Decode[T](raw)
	if err != nil {
		a.logger.Warn("slot holds undecodable value", zap.String("slot", name), zap.Error(err))
		return nil, false, nil
	}
	if items == nil {
		return nil, false, nil
	}
	return items, true, nil
}

// Write encodes items and stores them at name. Failures come back as
// *WriteError; nothing is retried.
func (a *Adapter[T]) Write(name string, items []T) error {
	raw, err := Encode(items)
	if err != nil {
		return &WriteError{Slot: name, Err: err}
	}
	if err := a.backend.Put(a.origin, name, raw); err != nil {
		return &WriteError{Slot: name, Err: err}
	}
	return nil
}

// Clear removes the slot entirely.
func (a *Adapter[T]) Clear(name string) error {
	if err := a.backend.Remove(a.origin, name); err != nil {
		return fmt.Errorf("clearing slot %q: %w", name, err)
	}
	return nil
}

// Watch returns a channel of changes to exactly the named slot made by other
// origins. The cancel function stops the subscription and closes the channel.
func (a *Adapter[T]) Watch(name string) (<-chan v1alpha1.SlotEvent, func()) {
	in, cancelIn := a.backend.Watch(name)
	out := make(chan v1alpha1.SlotEvent, cap(in))
	go func() {
		defer close(out)
		for evt := range in {
			if evt.Slot != name || evt.Origin == a.origin {
				continue
			}
			select {
			case out <- evt:
			default:
				// Drop event if the consumer is not keeping up.
			}
		}
	}()
	return out, cancelIn
}

// Encode renders a collection the way it is stored in a slot.
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

// Decode parses a stored slot value.
func Decode[T any](raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
