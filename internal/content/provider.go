package content

import (
	"context"
	"sync"
)

// Provider exposes both content stores to everything running under one
// context: an HTTP request, a terminal UI session or a CLI command.
type Provider struct {
	Posts    *PostStore
	Projects *ProjectStore
}

// NewProvider bundles the two stores.
func NewProvider(posts *PostStore, projects *ProjectStore) *Provider {
	return &Provider{Posts: posts, Projects: projects}
}

// Load brings both stores to Ready concurrently.
func (p *Provider) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.Posts.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		p.Projects.Load(ctx)
	}()
	wg.Wait()
}

type providerKey struct{}

// WithProvider returns a copy of ctx carrying p.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// ProviderFrom returns the provider attached to ctx, if any.
func ProviderFrom(ctx context.Context) (*Provider, bool) {
	p, ok := ctx.Value(providerKey{}).(*Provider)
	return p, ok && p != nil
}

// Posts returns the post store in scope. It panics when ctx carries no
// provider; that is a wiring bug, not a runtime condition.
func Posts(ctx context.Context) *PostStore {
	return mustProvider(ctx, "Posts").Posts
}

// Projects returns the project store in scope. It panics when ctx carries no
// provider.
func Projects(ctx context.Context) *ProjectStore {
	return mustProvider(ctx, "Projects").Projects
}

func mustProvider(ctx context.Context, accessor string) *Provider {
	p, ok := ProviderFrom(ctx)
	if !ok {
		panic("content." + accessor + " called outside a content provider scope; wrap the context with content.WithProvider")
	}
	return p
}
