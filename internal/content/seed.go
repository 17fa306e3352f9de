package content

import (
	"fmt"
	"strings"
	"time"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// SeedPosts completes posts read from a seed file so they can stand in for
// the bundled defaults. A missing slug is derived from the title and a
// missing publishedAt is stamped from now; values that are present are kept.
// Every record must then validate, and slugs must be unique.
func SeedPosts(posts []v1alpha1.Post, now time.Time) ([]v1alpha1.Post, error) {
	out := make([]v1alpha1.Post, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for i, p := range posts {
		p = p.DeepCopy()
		p.Title = strings.TrimSpace(p.Title)
		if p.Slug == "" {
			p.Slug = Slugify(p.Title)
		}
		if p.PublishedAt == "" {
			p.PublishedAt = now.Format(v1alpha1.DateLayout)
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		if err := validatePost(p); err != nil {
			return nil, fmt.Errorf("seed post %d %q: %w", i, p.Title, err)
		}
		if seen[p.Slug] {
			return nil, fmt.Errorf("seed post %d %q: duplicate slug %q", i, p.Title, p.Slug)
		}
		seen[p.Slug] = true
		out = append(out, p)
	}
	return out, nil
}

// SeedProjects is SeedPosts for projects: a missing id comes from the title
// and a missing completedAt is stamped from now.
func SeedProjects(projects []v1alpha1.Project, now time.Time) ([]v1alpha1.Project, error) {
	out := make([]v1alpha1.Project, 0, len(projects))
	seen := make(map[string]bool, len(projects))
	for i, p := range projects {
		p = p.DeepCopy()
		p.Title = strings.TrimSpace(p.Title)
		if p.ID == "" {
			p.ID = Slugify(p.Title)
		}
		if p.CompletedAt == "" {
			p.CompletedAt = now.Format(v1alpha1.DateLayout)
		}
		if p.Gallery == nil {
			p.Gallery = []string{}
		}
		if p.Technologies == nil {
			p.Technologies = []string{}
		}
		if p.Features == nil {
			p.Features = []string{}
		}
		if err := validateProject(p); err != nil {
			return nil, fmt.Errorf("seed project %d %q: %w", i, p.Title, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("seed project %d %q: duplicate id %q", i, p.Title, p.ID)
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}
