package content

import (
	"strings"
	"time"

	"github.com/klubi/folio/internal/slot"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// DefaultPostsSlot is the slot name blog posts are stored under.
const DefaultPostsSlot = "blog-posts"

// PostStore is the content store for blog posts.
type PostStore = Store[v1alpha1.Post]

// PostKind describes posts to a Store.
var PostKind = Kind[v1alpha1.Post]{
	Name:      v1alpha1.KindPost,
	Preserved: []string{"slug", "publishedAt"},
	Build:     NewPost,
	Validate:  validatePost,
}

// NewPostStore creates an Uninitialized post store persisting to slotName.
func NewPostStore(adapter *slot.Adapter[v1alpha1.Post], slotName string, defaults []v1alpha1.Post, opts ...Option) *PostStore {
	if slotName == "" {
		slotName = DefaultPostsSlot
	}
	return NewStore(PostKind, adapter, slotName, defaults, opts...)
}

// NewPost builds a complete post from admin-entered fields. The slug is
// derived from the title and publishedAt is stamped from now; any values
// supplied for them are ignored. readingTime is kept exactly as entered.
func NewPost(fields v1alpha1.Post, now time.Time) (v1alpha1.Post, error) {
	p := fields
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = Slugify(p.Title)
	p.PublishedAt = now.Format(v1alpha1.DateLayout)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if err := validatePost(p); err != nil {
		return v1alpha1.Post{}, err
	}
	return p, nil
}

func validatePost(p v1alpha1.Post) error {
	v := validator{kind: v1alpha1.KindPost}
	v.require(strings.TrimSpace(p.Title) != "", "title is required")
	v.require(p.Slug != "", "title must contain at least one letter or digit")
	v.require(strings.TrimSpace(p.Content) != "", "content is required")
	v.require(validDate(p.PublishedAt), "publishedAt %q is not a YYYY-MM-DD date", p.PublishedAt)
	return v.err()
}

func validDate(s string) bool {
	_, err := time.Parse(v1alpha1.DateLayout, s)
	return err == nil
}
