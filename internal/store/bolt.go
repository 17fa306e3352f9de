package store

import (
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

var bucketName = []byte("slots")

// BoltBackend persists slots to a BoltDB file on disk.
type BoltBackend struct {
	db       *bolt.DB
	mu       sync.RWMutex // protects watchers only
	watchers watchers
	closed   bool
}

// NewBoltBackend opens (or creates) a BoltDB database at path.
func NewBoltBackend(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}

	// Ensure the bucket exists.
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Get(slot string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get([]byte(slot))
		if raw == nil {
			return ErrNotFound
		}
		// raw is only valid for the life of the transaction.
		out = make([]byte, len(raw))
		copy(out, raw)
		return nil
	})
	if err == bolt.ErrDatabaseNotOpen {
		return nil, ErrClosed
	}
	return out, err
}

func (b *BoltBackend) Put(origin, slot string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(slot), value)
	})
	if err != nil {
		if err == bolt.ErrDatabaseNotOpen {
			return ErrClosed
		}
		return err
	}

	b.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotPut,
		Slot:   slot,
		Origin: origin,
		Value:  value,
		At:     time.Now(),
	})
	return nil
}

func (b *BoltBackend) Remove(origin, slot string) error {
	existed := false
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt.Get([]byte(slot)) == nil {
			return nil
		}
		existed = true
		return bkt.Delete([]byte(slot))
	})
	if err != nil {
		if err == bolt.ErrDatabaseNotOpen {
			return ErrClosed
		}
		return err
	}
	if !existed {
		return nil
	}

	b.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotRemoved,
		Slot:   slot,
		Origin: origin,
		At:     time.Now(),
	})
	return nil
}

func (b *BoltBackend) Watch(prefix string) (<-chan v1alpha1.SlotEvent, func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return closedWatch()
	}
	w := b.watchers.add(prefix)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.watchers.remove(w)
		})
	}
	return w.ch, cancel
}

func (b *BoltBackend) Close() error {
	b.mu.Lock()
	b.watchers.closeAll()
	b.closed = true
	b.mu.Unlock()

	return b.db.Close()
}

func (b *BoltBackend) notify(evt v1alpha1.SlotEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.watchers.notify(evt)
}
