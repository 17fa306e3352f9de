// Package store provides the key/value backends that hold Folio content slots.
//
// A slot is a single named value holding one collection's entire JSON-encoded
// snapshot. Every write replaces the whole value. Writers identify themselves
// with an origin so that watchers can tell their own writes apart from writes
// made by other contexts.
package store

import (
	"errors"
	"strings"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// Backend is the persistence interface for content slots.
type Backend interface {
	// Get returns the raw bytes stored at slot.
	// Returns ErrNotFound if the slot does not exist.
	Get(slot string) ([]byte, error)

	// Put replaces the value at slot and notifies watchers. origin identifies
	// the writing context and is carried on the emitted event.
	Put(origin, slot string, value []byte) error

	// Remove deletes the slot. Removing a missing slot is not an error.
	Remove(origin, slot string) error

	// Watch returns a channel that emits an event for every mutation whose
	// slot name starts with prefix. The returned cancel function removes the
	// watcher and closes the channel.
	Watch(prefix string) (<-chan v1alpha1.SlotEvent, func())

	// Close releases any resources held by the backend.
	Close() error
}

// Common sentinel errors.
var (
	ErrNotFound      = errors.New("slot not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrClosed        = errors.New("backend closed")
)

// watcher is an internal subscription to slot mutations.
type watcher struct {
	prefix string
	ch     chan v1alpha1.SlotEvent
}

// watchers is the fan-out shared by every backend. Callers hold their own lock.
type watchers []*watcher

func (ws *watchers) add(prefix string) *watcher {
	w := &watcher{
		prefix: prefix,
		ch:     make(chan v1alpha1.SlotEvent, 64),
	}
	*ws = append(*ws, w)
	return w
}

func (ws *watchers) remove(w *watcher) {
	for i, existing := range *ws {
		if existing == w {
			*ws = append((*ws)[:i], (*ws)[i+1:]...)
			close(w.ch)
			return
		}
	}
}

func (ws *watchers) closeAll() {
	for _, w := range *ws {
		close(w.ch)
	}
	*ws = nil
}

// notify sends the event to every watcher whose prefix matches.
func (ws watchers) notify(evt v1alpha1.SlotEvent) {
	for _, w := range ws {
		if strings.HasPrefix(evt.Slot, w.prefix) {
			select {
			case w.ch <- evt:
			default:
				// Drop event if the watcher is not consuming fast enough.
			}
		}
	}
}

// closedWatch is returned by Watch on a closed backend.
func closedWatch() (<-chan v1alpha1.SlotEvent, func()) {
	ch := make(chan v1alpha1.SlotEvent)
	close(ch)
	return ch, func() {}
}
