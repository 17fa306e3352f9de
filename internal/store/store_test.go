package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// backendFactories builds one fresh instance of every Backend implementation.
func backendFactories(t *testing.T) map[string]func() Backend {
	t.Helper()
	return map[string]func() Backend{
		"memory": func() Backend { return NewMemoryBackend() },
		"bolt": func() Backend {
			b, err := NewBoltBackend(filepath.Join(t.TempDir(), "folio.db"))
			if err != nil {
				t.Fatalf("opening bolt backend: %v", err)
			}
			return b
		},
		"sqlite": func() Backend {
			b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "folio.sqlite"))
			if err != nil {
				t.Fatalf("opening sqlite backend: %v", err)
			}
			return b
		},
		"file": func() Backend {
			b, err := NewFileBackend(filepath.Join(t.TempDir(), "slots"), zap.NewNop())
			if err != nil {
				t.Fatalf("opening file backend: %v", err)
			}
			return b
		},
	}
}

func TestPutGet(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			value := []byte(`[{"slug":"hello-world"}]`)
			if err := b.Put("tab-a", "blog-posts", value); err != nil {
				t.Fatalf("unexpected error on Put: %v", err)
			}

			got, err := b.Get("blog-posts")
			if err != nil {
				t.Fatalf("unexpected error on Get after Put: %v", err)
			}
			if !bytes.Equal(got, value) {
				t.Errorf("expected %s, got %s", value, got)
			}
		})
	}
}

func TestPutReplaces(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			if err := b.Put("tab-a", "blog-posts", []byte(`[1]`)); err != nil {
				t.Fatalf("unexpected error on first Put: %v", err)
			}
			if err := b.Put("tab-a", "blog-posts", []byte(`[2,3]`)); err != nil {
				t.Fatalf("unexpected error on second Put: %v", err)
			}

			got, err := b.Get("blog-posts")
			if err != nil {
				t.Fatalf("unexpected error on Get: %v", err)
			}
			if string(got) != `[2,3]` {
				t.Errorf("expected [2,3] after replace, got %s", got)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			_, err := b.Get("nonexistent")
			if err == nil {
				t.Fatal("expected ErrNotFound, got nil")
			}
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			if err := b.Put("tab-a", "portfolio-projects", []byte(`[]`)); err != nil {
				t.Fatalf("unexpected error on Put: %v", err)
			}
			if err := b.Remove("tab-a", "portfolio-projects"); err != nil {
				t.Fatalf("unexpected error on Remove: %v", err)
			}

			if _, err := b.Get("portfolio-projects"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after Remove, got %v", err)
			}

			// Removing again is not an error.
			if err := b.Remove("tab-a", "portfolio-projects"); err != nil {
				t.Fatalf("unexpected error on second Remove: %v", err)
			}
		})
	}
}

func TestWatch(t *testing.T) {
	for name, factory := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			b := factory()
			defer b.Close()

			ch, cancel := b.Watch("blog-")
			defer cancel()

			// --- Put ---
			if err := b.Put("tab-a", "blog-posts", []byte(`[]`)); err != nil {
				t.Fatalf("unexpected error on Put: %v", err)
			}

			evt := receiveEvent(t, ch, 2*time.Second)
			if evt.Type != v1alpha1.SlotPut {
				t.Errorf("expected event type PUT, got %s", evt.Type)
			}
			if evt.Slot != "blog-posts" {
				t.Errorf("expected event slot blog-posts, got %s", evt.Slot)
			}
			if evt.Origin != "tab-a" {
				t.Errorf("expected event origin tab-a, got %s", evt.Origin)
			}
			if string(evt.Value) != `[]` {
				t.Errorf("expected event value [], got %s", evt.Value)
			}

			// --- Remove ---
			if err := b.Remove("tab-b", "blog-posts"); err != nil {
				t.Fatalf("unexpected error on Remove: %v", err)
			}

			evt = receiveEvent(t, ch, 2*time.Second)
			if evt.Type != v1alpha1.SlotRemoved {
				t.Errorf("expected event type REMOVED, got %s", evt.Type)
			}
			if evt.Origin != "tab-b" {
				t.Errorf("expected event origin tab-b, got %s", evt.Origin)
			}
		})
	}
}

func TestWatchPrefixFiltering(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()

	ch, cancel := b.Watch("blog-posts")
	defer cancel()

	if err := b.Put("tab-a", "portfolio-projects", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error on Put: %v", err)
	}

	// Ensure no event is received for the unrelated slot.
	select {
	case got := <-ch:
		t.Fatalf("unexpected event for unrelated slot: %+v", got)
	case <-time.After(100 * time.Millisecond):
		// Expected: no event received.
	}
}

func TestWatchCancel(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()

	ch, cancel := b.Watch("")
	cancel()
	// Cancelling twice must not panic.
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel to be closed after cancel, but received a value")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel to close after cancel")
	}

	// Mutations after cancel must not panic.
	if err := b.Put("tab-a", "blog-posts", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error on Put after cancel: %v", err)
	}
}

func TestClose(t *testing.T) {
	b := NewMemoryBackend()

	if err := b.Put("tab-a", "blog-posts", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error on Put: %v", err)
	}
	ch, _ := b.Watch("")

	if err := b.Close(); err != nil {
		t.Fatalf("unexpected error on Close: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected watcher channel to be closed after backend Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher channel to close after backend Close")
	}

	if _, err := b.Get("blog-posts"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	if err := b.Put("tab-a", "blog-posts", []byte(`[]`)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Put after Close, got %v", err)
	}
}

func TestMemoryQuota(t *testing.T) {
	b := NewMemoryBackendWithQuota(64)
	defer b.Close()

	if err := b.Put("tab-a", "small", []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("unexpected error on Put within quota: %v", err)
	}

	big := bytes.Repeat([]byte("x"), 128)
	err := b.Put("tab-a", "big", big)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// The rejected write leaves the slot untouched.
	if _, err := b.Get("big"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for rejected slot, got %v", err)
	}

	// Replacing a slot only counts the new value once.
	if err := b.Put("tab-a", "small", []byte(`[4,5,6]`)); err != nil {
		t.Fatalf("unexpected error replacing slot within quota: %v", err)
	}
}

func TestFileBackendExternalWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "slots")
	b, err := NewFileBackend(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("opening file backend: %v", err)
	}
	defer b.Close()

	ch, cancel := b.Watch("blog-posts")
	defer cancel()

	// Simulate another process writing the slot file directly.
	if err := os.WriteFile(filepath.Join(dir, "blog-posts.json"), []byte(`[{"slug":"x"}]`), 0644); err != nil {
		t.Fatalf("writing slot file: %v", err)
	}

	evt := receiveEvent(t, ch, 2*time.Second)
	if evt.Origin != v1alpha1.OriginExternal {
		t.Errorf("expected origin %s, got %s", v1alpha1.OriginExternal, evt.Origin)
	}
	if evt.Slot != "blog-posts" {
		t.Errorf("expected slot blog-posts, got %s", evt.Slot)
	}
}

func TestFileBackendOwnWriteNotReannounced(t *testing.T) {
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "slots"), zap.NewNop())
	if err != nil {
		t.Fatalf("opening file backend: %v", err)
	}
	defer b.Close()

	ch, cancel := b.Watch("blog-posts")
	defer cancel()

	if err := b.Put("tab-a", "blog-posts", []byte(`[]`)); err != nil {
		t.Fatalf("unexpected error on Put: %v", err)
	}

	evt := receiveEvent(t, ch, 2*time.Second)
	if evt.Origin != "tab-a" {
		t.Fatalf("expected origin tab-a, got %s", evt.Origin)
	}

	// The filesystem notification for our own write must be swallowed.
	select {
	case got := <-ch:
		t.Fatalf("unexpected duplicate event for own write: %+v", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileBackendRejectsBadSlotName(t *testing.T) {
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "slots"), zap.NewNop())
	if err != nil {
		t.Fatalf("opening file backend: %v", err)
	}
	defer b.Close()

	for _, slot := range []string{"", "../escape", ".hidden", `a\b`} {
		if err := b.Put("tab-a", slot, []byte(`[]`)); err == nil {
			t.Errorf("expected error for slot name %q, got nil", slot)
		}
	}
}

// ---------- helpers ----------

// receiveEvent reads a single event from ch with a timeout. It fails the test
// if no event is received within the deadline.
func receiveEvent(t *testing.T, ch <-chan v1alpha1.SlotEvent, timeout time.Duration) v1alpha1.SlotEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(timeout):
		t.Fatal("timed out waiting for slot event")
		return v1alpha1.SlotEvent{} // unreachable, satisfies compiler
	}
}
