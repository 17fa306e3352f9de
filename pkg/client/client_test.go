package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klubi/folio/internal/apiserver"
	"github.com/klubi/folio/internal/content"
	"github.com/klubi/folio/internal/slot"
	"github.com/klubi/folio/internal/store"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	backend := store.NewMemoryBackend()
	origin := slot.NewOrigin()
	p := content.NewProvider(
		content.NewPostStore(slot.New[v1alpha1.Post](backend, origin, nil), "", content.DefaultPosts()),
		content.NewProjectStore(slot.New[v1alpha1.Project](backend, origin, nil), "", content.DefaultProjects()),
	)
	p.Load(context.Background())

	ts := httptest.NewServer(apiserver.NewServer("", p, nil).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL + "/")
}

func TestClientPosts(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Healthz())

	posts, err := c.ListPosts(ListFilter{})
	require.NoError(t, err)
	assert.Len(t, posts, len(content.DefaultPosts()))

	featured := true
	posts, err = c.ListPosts(ListFilter{Featured: &featured})
	require.NoError(t, err)
	for _, p := range posts {
		assert.True(t, p.Featured)
	}

	created, err := c.CreatePost(&v1alpha1.Post{Title: "Client Post", Content: "**hi**"})
	require.NoError(t, err)
	assert.Equal(t, "client-post", created.Slug)

	updated, err := c.UpdatePost("client-post", map[string]interface{}{"featured": true})
	require.NoError(t, err)
	assert.True(t, updated.Featured)

	html, err := c.RenderPost("client-post")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>hi</strong>")

	require.NoError(t, c.DeletePost("client-post"))
	require.NoError(t, c.DeletePost("client-post"))

	_, err = c.GetPost("client-post")
	assert.True(t, IsNotFound(err))
}

func TestClientValidationError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.CreateProject(&v1alpha1.Project{Title: "No Description"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.StatusCode)
	assert.Contains(t, apiErr.Problems, "description is required")
	assert.False(t, IsNotFound(err))
}

func TestClientProjects(t *testing.T) {
	c := newTestClient(t)

	projects, err := c.ListProjects(ListFilter{Category: "Media"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "wildscapia-environmental-news", projects[0].ID)

	require.NoError(t, c.DeleteProject("wildscapia-environmental-news"))
	_, err = c.GetProject("wildscapia-environmental-news")
	assert.True(t, IsNotFound(err))

	_, err = c.UpdateProject("wildscapia-environmental-news", map[string]interface{}{"title": "x"})
	assert.True(t, IsNotFound(err))

	migrated, err := c.MigrateProjects()
	require.NoError(t, err)
	assert.Len(t, migrated, 3)

	got, err := c.GetProject("wildscapia-environmental-news")
	require.NoError(t, err)
	assert.Equal(t, "Media", got.Category)

	res, err := c.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Projects)
}

func TestClientApply(t *testing.T) {
	c := newTestClient(t)

	out, err := c.Apply(&v1alpha1.ProjectDocument{
		TypeMeta: v1alpha1.TypeMeta{APIVersion: v1alpha1.APIVersion, Kind: v1alpha1.KindProject},
		Spec:     v1alpha1.Project{Title: "Applied", Description: "d", Category: "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "applied", out["id"])
}

func TestClientWatch(t *testing.T) {
	c := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := c.Watch(ctx)
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, v1alpha1.ChangeWelcome, evt.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no welcome event")
	}

	// The hub registers the client right after the welcome write.
	require.Eventually(t, func() bool {
		if _, err := c.CreatePost(&v1alpha1.Post{Title: "Watched " + time.Now().Format("150405.000000"), Content: "x"}); err != nil {
			return false
		}
		select {
		case evt := <-events:
			return evt.Type == v1alpha1.ChangeChanged && evt.Kind == v1alpha1.KindPost
		case <-time.After(200 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
