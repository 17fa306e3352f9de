package store

import (
	"sync"
	"time"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// MemoryBackend is a thread-safe, in-memory Backend backed by a simple map.
// Useful for unit tests and short-lived processes.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string][]byte // slot -> JSON bytes
	quota    int               // total byte budget, 0 = unlimited
	watchers watchers
	closed   bool
}

// NewMemoryBackend creates a ready-to-use in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
	}
}

// NewMemoryBackendWithQuota creates an in-memory backend that rejects any Put
// that would grow the total stored size past quota bytes.
func NewMemoryBackendWithQuota(quota int) *MemoryBackend {
	m := NewMemoryBackend()
	m.quota = quota
	return m
}

func (m *MemoryBackend) Get(slot string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	raw, ok := m.data[slot]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemoryBackend) Put(origin, slot string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.quota > 0 && m.sizeWithout(slot)+len(value) > m.quota {
		return ErrQuotaExceeded
	}

	raw := make([]byte, len(value))
	copy(raw, value)
	m.data[slot] = raw

	m.watchers.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotPut,
		Slot:   slot,
		Origin: origin,
		Value:  raw,
		At:     time.Now(),
	})
	return nil
}

func (m *MemoryBackend) Remove(origin, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, exists := m.data[slot]; !exists {
		return nil
	}
	delete(m.data, slot)

	m.watchers.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotRemoved,
		Slot:   slot,
		Origin: origin,
		At:     time.Now(),
	})
	return nil
}

func (m *MemoryBackend) Watch(prefix string) (<-chan v1alpha1.SlotEvent, func()) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return closedWatch()
	}
	w := m.watchers.add(prefix)
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.watchers.remove(w)
		})
	}
	return w.ch, cancel
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watchers.closeAll()
	m.data = make(map[string][]byte)
	m.closed = true
	return nil
}

// sizeWithout returns the stored byte total excluding slot.
// Must be called while m.mu is held.
func (m *MemoryBackend) sizeWithout(slot string) int {
	total := 0
	for k, v := range m.data {
		if k == slot {
			continue
		}
		total += len(k) + len(v)
	}
	return total + len(slot)
}
