package store

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

const slotFileExt = ".json"

// FileBackend stores each slot as <dir>/<slot>.json. Writes from other
// processes sharing the directory are picked up with fsnotify and reported
// with origin v1alpha1.OriginExternal.
type FileBackend struct {
	dir    string
	fsw    *fsnotify.Watcher
	logger *zap.Logger
	done   chan struct{}

	mu       sync.RWMutex
	watchers watchers
	// seen holds the hash of the last content this process wrote or
	// announced per slot. A nil entry means the slot was removed.
	seen   map[string]*[sha256.Size]byte
	closed bool
}

// NewFileBackend creates dir if needed and starts watching it.
func NewFileBackend(dir string, logger *zap.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating slot directory %s: %w", dir, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch slot directory: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch slot directory %s: %w", dir, err)
	}

	f := &FileBackend{
		dir:    dir,
		fsw:    fsw,
		logger: logger,
		done:   make(chan struct{}),
		seen:   make(map[string]*[sha256.Size]byte),
	}
	go f.loop()
	return f, nil
}

func (f *FileBackend) Get(slot string) ([]byte, error) {
	path, err := f.path(slot)
	if err != nil {
		return nil, err
	}
	if f.isClosed() {
		return nil, ErrClosed
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", slot, err)
	}
	return raw, nil
}

func (f *FileBackend) Put(origin, slot string, value []byte) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(f.dir, "."+slot+".tmp-*")
	if err != nil {
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %q: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %q: %w", slot, err)
	}

	sum := sha256.Sum256(value)
	f.seen[slot] = &sum
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write slot %q: %w", slot, err)
	}

	f.watchers.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotPut,
		Slot:   slot,
		Origin: origin,
		Value:  value,
		At:     time.Now(),
	})
	return nil
}

func (f *FileBackend) Remove(origin, slot string) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	f.seen[slot] = nil
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove slot %q: %w", slot, err)
	}

	f.watchers.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotRemoved,
		Slot:   slot,
		Origin: origin,
		At:     time.Now(),
	})
	return nil
}

func (f *FileBackend) Watch(prefix string) (<-chan v1alpha1.SlotEvent, func()) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return closedWatch()
	}
	w := f.watchers.add(prefix)
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.watchers.remove(w)
		})
	}
	return w.ch, cancel
}

func (f *FileBackend) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.watchers.closeAll()
	f.mu.Unlock()

	err := f.fsw.Close()
	<-f.done
	return err
}

// loop turns filesystem events into slot events for writes this process did
// not make itself.
func (f *FileBackend) loop() {
	defer close(f.done)
	for {
		select {
		case event, ok := <-f.fsw.Events:
			if !ok {
				return
			}
			slot, ok := slotFromFile(event.Name)
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				f.reconcile(slot)
			}
		case err, ok := <-f.fsw.Errors:
			if !ok {
				return
			}
			f.logger.Warn("slot directory watcher error", zap.Error(err))
		}
	}
}

// reconcile compares the slot file against what this process last saw and
// announces the difference as an external change.
func (f *FileBackend) reconcile(slot string) {
	raw, err := os.ReadFile(filepath.Join(f.dir, slot+slotFileExt))
	missing := os.IsNotExist(err)
	if err != nil && !missing {
		f.logger.Warn("reading changed slot file", zap.String("slot", slot), zap.Error(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	prev, known := f.seen[slot]
	if missing {
		if known && prev == nil {
			return
		}
		f.seen[slot] = nil
		f.watchers.notify(v1alpha1.SlotEvent{
			Type:   v1alpha1.SlotRemoved,
			Slot:   slot,
			Origin: v1alpha1.OriginExternal,
			At:     time.Now(),
		})
		return
	}

	sum := sha256.Sum256(raw)
	if known && prev != nil && *prev == sum {
		return
	}
	f.seen[slot] = &sum
	f.watchers.notify(v1alpha1.SlotEvent{
		Type:   v1alpha1.SlotPut,
		Slot:   slot,
		Origin: v1alpha1.OriginExternal,
		Value:  raw,
		At:     time.Now(),
	})
}

func (f *FileBackend) path(slot string) (string, error) {
	if slot == "" || strings.ContainsAny(slot, `/\`) || strings.HasPrefix(slot, ".") {
		return "", fmt.Errorf("invalid slot name %q", slot)
	}
	return filepath.Join(f.dir, slot+slotFileExt), nil
}

func (f *FileBackend) isClosed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// slotFromFile maps a watched file path back to its slot name, skipping
// temporary files.
func slotFromFile(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, slotFileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, slotFileExt), true
}
