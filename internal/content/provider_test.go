package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klubi/folio/internal/slot"
	"github.com/klubi/folio/internal/store"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

func TestProviderScope(t *testing.T) {
	backend := store.NewMemoryBackend()
	origin := slot.NewOrigin()
	p := NewProvider(
		NewPostStore(slot.New[v1alpha1.Post](backend, origin, nil), "", DefaultPosts()),
		NewProjectStore(slot.New[v1alpha1.Project](backend, origin, nil), "", DefaultProjects()),
	)
	p.Load(context.Background())

	ctx := WithProvider(context.Background(), p)

	assert.Same(t, p.Posts, Posts(ctx))
	assert.Same(t, p.Projects, Projects(ctx))
	assert.Equal(t, Ready, Posts(ctx).State())
	assert.Equal(t, Ready, Projects(ctx).State())
	assert.Equal(t, DefaultPostsSlot, Posts(ctx).Slot())
	assert.Equal(t, DefaultProjectsSlot, Projects(ctx).Slot())

	got, ok := ProviderFrom(ctx)
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestAccessOutsideProviderPanics(t *testing.T) {
	ctx := context.Background()

	assert.PanicsWithValue(t,
		"content.Posts called outside a content provider scope; wrap the context with content.WithProvider",
		func() { Posts(ctx) })
	assert.Panics(t, func() { Projects(ctx) })

	_, ok := ProviderFrom(ctx)
	assert.False(t, ok)

	_, ok = ProviderFrom(WithProvider(ctx, nil))
	assert.False(t, ok)
}
