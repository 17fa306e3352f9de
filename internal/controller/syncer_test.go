package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klubi/folio/internal/content"
	"github.com/klubi/folio/internal/slot"
	"github.com/klubi/folio/internal/store"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

type tab struct {
	posts    *content.PostStore
	projects *content.ProjectStore
}

func openTab(t *testing.T, backend store.Backend) tab {
	t.Helper()
	origin := slot.NewOrigin()
	tb := tab{
		posts: content.NewPostStore(slot.New[v1alpha1.Post](backend, origin, nil),
			content.DefaultPostsSlot, content.DefaultPosts()),
		projects: content.NewProjectStore(slot.New[v1alpha1.Project](backend, origin, nil),
			content.DefaultProjectsSlot, content.DefaultProjects()),
	}
	tb.posts.Load(context.Background())
	tb.projects.Load(context.Background())
	return tb
}

type syncLog struct {
	mu    sync.Mutex
	slots []string
}

func (l *syncLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots = append(l.slots, name)
}

func (l *syncLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func startSyncer(t *testing.T, tb tab) *syncLog {
	t.Helper()
	s := NewSyncer(nil)
	require.NoError(t, s.Register(tb.posts))
	require.NoError(t, s.Register(tb.projects))

	log := &syncLog{}
	s.OnSync(log.record)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)
	return log
}

func TestCrossTabConvergence(t *testing.T) {
	backend := store.NewMemoryBackend()
	tabA := openTab(t, backend)
	tabB := openTab(t, backend)
	startSyncer(t, tabB)

	added, err := tabA.posts.Add(v1alpha1.Post{Title: "Written In Tab A", Content: "x"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := tabB.posts.Get(added.Slug)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	tabA.projects.Delete("smilehub-dental")
	require.Eventually(t, func() bool {
		_, ok := tabB.projects.Get("smilehub-dental")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, tabA.posts.List(), tabB.posts.List())
	assert.Equal(t, tabA.projects.List(), tabB.projects.List())
}

func TestSyncerIgnoresOwnAndUnrelatedWrites(t *testing.T) {
	backend := store.NewMemoryBackend()
	tabB := openTab(t, backend)
	log := startSyncer(t, tabB)

	_, err := tabB.posts.Add(v1alpha1.Post{Title: "Local", Content: "x"})
	require.NoError(t, err)
	require.NoError(t, backend.Put("someone-else", "unrelated-slot", []byte("[]")))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, log.len())
}

func TestSyncerPicksUpMigrate(t *testing.T) {
	backend := store.NewMemoryBackend()
	tabA := openTab(t, backend)
	tabB := openTab(t, backend)
	log := startSyncer(t, tabB)

	tabB.projects.Delete("wildscapia-environmental-news")
	tabA.projects.Migrate()

	require.Eventually(t, func() bool {
		_, ok := tabB.projects.Get("wildscapia-environmental-news")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, log.len(), 1)
}

func TestSyncerLifecycle(t *testing.T) {
	backend := store.NewMemoryBackend()
	tb := openTab(t, backend)

	s := NewSyncer(nil)
	require.NoError(t, s.Register(tb.posts))
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
	assert.ErrorIs(t, s.Register(tb.projects), ErrAlreadyStarted)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

// silentTarget never reports changes; only a resync reloads it.
type silentTarget struct {
	mu        sync.Mutex
	refreshes int
}

func (s *silentTarget) Slot() string { return "silent" }

func (s *silentTarget) Watch() (<-chan v1alpha1.SlotEvent, func()) {
	return make(chan v1alpha1.SlotEvent), func() {}
}

func (s *silentTarget) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	return nil
}

func (s *silentTarget) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func TestPeriodicResync(t *testing.T) {
	target := &silentTarget{}
	s := NewSyncer(nil)
	require.NoError(t, s.Register(target))
	require.NoError(t, s.SetResyncInterval(20*time.Millisecond))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	require.Eventually(t, func() bool {
		return target.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, s.SetResyncInterval(time.Second), ErrAlreadyStarted)
}

func TestNoResyncByDefault(t *testing.T) {
	target := &silentTarget{}
	s := NewSyncer(nil)
	require.NoError(t, s.Register(target))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, target.count())
}

// flakyBackend fails the next failures Get calls, as a locked database would.
type flakyBackend struct {
	*store.MemoryBackend
	failures atomic.Int32
}

func (b *flakyBackend) Get(name string) ([]byte, error) {
	if b.failures.Add(-1) >= 0 {
		return nil, errors.New("database is locked")
	}
	b.failures.Store(0)
	return b.MemoryBackend.Get(name)
}

func TestSyncerRetriesFailedReload(t *testing.T) {
	shared := store.NewMemoryBackend()
	flaky := &flakyBackend{MemoryBackend: shared}
	tabA := openTab(t, shared)
	tabB := openTab(t, flaky)

	s := NewSyncer(nil)
	require.NoError(t, s.Register(tabB.posts))
	log := &syncLog{}
	s.OnSync(log.record)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	flaky.failures.Store(2)
	added, err := tabA.posts.Add(v1alpha1.Post{Title: "After Lock", Content: "x"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.queue.Retries(content.DefaultPostsSlot) > 0
	}, 2*time.Second, time.Millisecond, "a failed reload is requeued")

	require.Eventually(t, func() bool {
		_, ok := tabB.posts.Get(added.Slug)
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, tabA.posts.List(), tabB.posts.List())
	require.Eventually(t, func() bool {
		return s.queue.Retries(content.DefaultPostsSlot) == 0 && log.len() == 1
	}, 2*time.Second, 10*time.Millisecond, "success clears the retry count")

	raw, err := shared.Get(content.DefaultPostsSlot)
	require.NoError(t, err)
	stored, err := slot.Decode[v1alpha1.Post](raw)
	require.NoError(t, err)
	assert.Equal(t, tabA.posts.List(), stored, "failed reloads never overwrite the slot")
}
