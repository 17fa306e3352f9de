// Package v1alpha1 defines all Folio content types.
package v1alpha1

import (
	"encoding/json"
	"time"
)

const (
	APIVersion = "folio.dev/v1alpha1"
)

// Resource kinds
const (
	KindPost    = "Post"
	KindProject = "Project"

	// KindLegacyProject documents carry the pre-Project shape and are
	// converted on apply.
	KindLegacyProject = "LegacyProject"
)

// DateLayout is the YYYY-MM-DD layout used by publishedAt and completedAt.
const DateLayout = "2006-01-02"

// TypeMeta describes the API version and kind of a manifest document.
type TypeMeta struct {
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Kind       string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// -------------------------------------------------------
// Post
// -------------------------------------------------------

// Author is the byline attached to a blog post.
type Author struct {
	Name   string `json:"name" yaml:"name"`
	Role   string `json:"role" yaml:"role"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// Post is a blog article. Slug is its stable key.
type Post struct {
	Slug        string   `json:"slug" yaml:"slug"`
	Title       string   `json:"title" yaml:"title"`
	Excerpt     string   `json:"excerpt" yaml:"excerpt"`
	Content     string   `json:"content" yaml:"content"`
	CoverImage  string   `json:"coverImage" yaml:"coverImage"`
	Author      Author   `json:"author" yaml:"author"`
	PublishedAt string   `json:"publishedAt" yaml:"publishedAt"`
	Tags        []string `json:"tags" yaml:"tags"`
	Featured    bool     `json:"featured,omitempty" yaml:"featured,omitempty"`
	ReadingTime string   `json:"readingTime" yaml:"readingTime"`
}

// Key returns the post slug.
func (p Post) Key() string { return p.Slug }

// -------------------------------------------------------
// Project
// -------------------------------------------------------

// Testimonial is an optional client quote attached to a project.
type Testimonial struct {
	Text    string `json:"text" yaml:"text"`
	Author  string `json:"author" yaml:"author"`
	Role    string `json:"role" yaml:"role"`
	Company string `json:"company" yaml:"company"`
}

// Project is a portfolio case study. ID is its stable key.
type Project struct {
	ID              string       `json:"id" yaml:"id"`
	Title           string       `json:"title" yaml:"title"`
	Description     string       `json:"description" yaml:"description"`
	LongDescription string       `json:"longDescription" yaml:"longDescription"`
	Image           string       `json:"image" yaml:"image"`
	Gallery         []string     `json:"gallery" yaml:"gallery"`
	Category        string       `json:"category" yaml:"category"`
	Technologies    []string     `json:"technologies" yaml:"technologies"`
	Features        []string     `json:"features" yaml:"features"`
	WebsiteURL      string       `json:"websiteUrl,omitempty" yaml:"websiteUrl,omitempty"`
	Testimonial     *Testimonial `json:"testimonial,omitempty" yaml:"testimonial,omitempty"`
	CompletedAt     string       `json:"completedAt" yaml:"completedAt"`
	Featured        bool         `json:"featured" yaml:"featured"`
}

// Key returns the project id.
func (p Project) Key() string { return p.ID }

// -------------------------------------------------------
// LegacyProject
// -------------------------------------------------------

// LegacyQuote is the testimonial shape used by LegacyProject.
type LegacyQuote struct {
	Text     string `json:"text" yaml:"text"`
	Name     string `json:"name" yaml:"name"`
	Position string `json:"position" yaml:"position"`
	Company  string `json:"company,omitempty" yaml:"company,omitempty"`
}

// LegacyProject is the project record shape that predates Project. It is
// only read; conversion to Project happens during migration.
type LegacyProject struct {
	Slug       string       `json:"slug" yaml:"slug"`
	Title      string       `json:"title" yaml:"title"`
	Client     string       `json:"client" yaml:"client"`
	Category   string       `json:"category" yaml:"category"`
	Summary    string       `json:"summary" yaml:"summary"`
	Body       string       `json:"body" yaml:"body"`
	Thumbnail  string       `json:"thumbnail" yaml:"thumbnail"`
	Images     []string     `json:"images" yaml:"images"`
	Stack      []string     `json:"stack" yaml:"stack"`
	Highlights []string     `json:"highlights" yaml:"highlights"`
	URL        string       `json:"url,omitempty" yaml:"url,omitempty"`
	Quote      *LegacyQuote `json:"quote,omitempty" yaml:"quote,omitempty"`
	Year       string       `json:"year" yaml:"year"`
	Featured   bool         `json:"featured" yaml:"featured"`
}

// -------------------------------------------------------
// Manifest documents
// -------------------------------------------------------

// PostDocument wraps a Post with TypeMeta for manifests and the apply endpoint.
type PostDocument struct {
	TypeMeta `json:",inline" yaml:",inline"`
	Spec     Post `json:"spec" yaml:"spec"`
}

// ProjectDocument wraps a Project with TypeMeta for manifests and the apply endpoint.
type ProjectDocument struct {
	TypeMeta `json:",inline" yaml:",inline"`
	Spec     Project `json:"spec" yaml:"spec"`
}

// LegacyProjectDocument wraps a LegacyProject for manifests.
type LegacyProjectDocument struct {
	TypeMeta `json:",inline" yaml:",inline"`
	Spec     LegacyProject `json:"spec" yaml:"spec"`
}

// -------------------------------------------------------
// Slot events
// -------------------------------------------------------

// SlotEventType describes the kind of slot mutation.
type SlotEventType string

const (
	SlotPut     SlotEventType = "PUT"
	SlotRemoved SlotEventType = "REMOVED"
)

// OriginExternal marks events produced by a writer outside this process.
const OriginExternal = "external"

// SlotEvent is emitted by a storage backend whenever a slot changes.
// Origin identifies the context that performed the write.
type SlotEvent struct {
	Type   SlotEventType   `json:"type"`
	Slot   string          `json:"slot"`
	Origin string          `json:"origin"`
	Value  json.RawMessage `json:"value,omitempty"`
	At     time.Time       `json:"at"`
}

// -------------------------------------------------------
// Change feed
// -------------------------------------------------------

// Change feed event types.
const (
	ChangeWelcome = "welcome"
	ChangeChanged = "changed"
)

// ChangeEvent is pushed to change feed subscribers whenever a store loads
// or mutates its collection.
type ChangeEvent struct {
	Type  string    `json:"type"`
	Kind  string    `json:"kind,omitempty"`
	Slot  string    `json:"slot,omitempty"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}
