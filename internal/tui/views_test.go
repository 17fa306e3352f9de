package tui

import (
	"strings"
	"testing"

	"github.com/klubi/folio/pkg/apis/v1alpha1"
)

func samplePosts() []v1alpha1.Post {
	return []v1alpha1.Post{
		{Slug: "fast-sites", Title: "Fast Sites", PublishedAt: "2024-01-02", Tags: []string{"Performance", "Web"}, Featured: true, Author: v1alpha1.Author{Name: "Ada"}},
		{Slug: "colour", Title: "Colour Palettes", PublishedAt: "2024-02-03", Tags: []string{"Design"}},
	}
}

func sampleProjects() []v1alpha1.Project {
	return []v1alpha1.Project{
		{ID: "smilehub", Title: "SmileHub", Category: "Healthcare", CompletedAt: "2023-12-31", Technologies: []string{"Next.js"}, Featured: true},
		{ID: "fort-knox", Title: "Fort Knox", Category: "Construction", CompletedAt: "2024-06-30"},
	}
}

func TestMatchesFilter(t *testing.T) {
	tests := []struct {
		filter string
		values []string
		want   bool
	}{
		{"", []string{"anything"}, true},
		{"fast", []string{"Fast Sites"}, true},
		{"FAST", []string{"fast sites"}, true},
		{"nope", []string{"Fast Sites", "design"}, false},
		{"des", []string{"x", "Design"}, true},
	}
	for _, tt := range tests {
		if got := matchesFilter(tt.filter, tt.values...); got != tt.want {
			t.Errorf("matchesFilter(%q, %v) = %v, want %v", tt.filter, tt.values, got, tt.want)
		}
	}
}

func TestPostRows(t *testing.T) {
	rows := postRows(samplePosts(), "")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(postHeaders) {
		t.Fatalf("row has %d columns, headers have %d", len(rows[0]), len(postHeaders))
	}
	if rows[0][0] != "fast-sites" || rows[0][3] != "Performance,Web" || rows[0][4] != "yes" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[1][4] != "no" {
		t.Errorf("expected colour to be unfeatured, got %q", rows[1][4])
	}

	filtered := postRows(samplePosts(), "design")
	if len(filtered) != 1 || filtered[0][0] != "colour" {
		t.Errorf("tag filter: got %v", filtered)
	}

	byAuthor := postRows(samplePosts(), "ada")
	if len(byAuthor) != 1 || byAuthor[0][0] != "fast-sites" {
		t.Errorf("author filter: got %v", byAuthor)
	}
}

func TestProjectRows(t *testing.T) {
	rows := projectRows(sampleProjects(), "health")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][0] != "smilehub" || rows[0][2] != "Healthcare" {
		t.Errorf("unexpected row: %v", rows[0])
	}

	if got := projectRows(sampleProjects(), "next.js"); len(got) != 1 {
		t.Errorf("technology filter: got %v", got)
	}
	if got := projectRows(nil, ""); len(got) != 0 {
		t.Errorf("expected no rows, got %v", got)
	}
}

func TestFeaturedState(t *testing.T) {
	posts, projects := samplePosts(), sampleProjects()

	if f, ok := featuredState(viewPosts, "fast-sites", posts, projects); !ok || !f {
		t.Errorf("fast-sites: got (%v, %v)", f, ok)
	}
	if f, ok := featuredState(viewProjects, "fort-knox", posts, projects); !ok || f {
		t.Errorf("fort-knox: got (%v, %v)", f, ok)
	}
	if _, ok := featuredState(viewProjects, "fast-sites", posts, projects); ok {
		t.Error("post slug should not resolve in the projects view")
	}
}

func TestFormatProjectDescribe(t *testing.T) {
	p := sampleProjects()[0]
	p.Testimonial = &v1alpha1.Testimonial{Text: "Great [work]", Author: "Dr Lee", Role: "Owner"}

	out := formatProjectDescribe(&p)
	for _, want := range []string{"smilehub", "Healthcare", "Dr Lee, Owner", "Next.js"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Dr Lee, Owner, ") {
		t.Error("empty company should not be printed")
	}
}

func TestFormatPostDescribe(t *testing.T) {
	p := samplePosts()[0]
	p.Content = "# Heading\n\nBody"

	out := formatPostDescribe(&p)
	for _, want := range []string{"fast-sites", "Performance, Web", "# Heading"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q:\n%s", want, out)
		}
	}
}

func TestHeaderText(t *testing.T) {
	got := headerText("http://127.0.0.1:7117", viewProjects, "dental", true)
	for _, want := range []string{"http://127.0.0.1:7117", "[green]live[-]", "<1>Posts", "[::b]<2>[Projects][::-]", "filter: dental"} {
		if !strings.Contains(got, want) {
			t.Errorf("header %q missing %q", got, want)
		}
	}
	if got := headerText("x", viewPosts, "", false); strings.Contains(got, "filter") || !strings.Contains(got, "polling") {
		t.Errorf("unexpected header %q", got)
	}
}

func TestKeyHints(t *testing.T) {
	if strings.Contains(keyHints(viewPosts), "Migrate") {
		t.Error("posts view should not offer migrate")
	}
	if !strings.Contains(keyHints(viewProjects), "<m>[white]Migrate") {
		t.Error("projects view should offer migrate")
	}
}
