package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

func TestParsePost(t *testing.T) {
	yaml := []byte(`
apiVersion: folio.dev/v1alpha1
kind: Post
spec:
  title: "Launching Our New Site"
  excerpt: "We rebuilt everything."
  content: "## Hello\n\nNew site."
  coverImage: /images/launch.jpg
  author:
    name: Amara Okafor
    role: Creative Director
  tags:
    - news
    - studio
  featured: true
`)
	docs, err := ParseBytes(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	post, ok := docs[0].(*v1alpha1.PostDocument)
	if !ok {
		t.Fatalf("expected *v1alpha1.PostDocument, got %T", docs[0])
	}
	if post.APIVersion != v1alpha1.APIVersion {
		t.Errorf("expected apiVersion %s, got %s", v1alpha1.APIVersion, post.APIVersion)
	}
	if post.Kind != v1alpha1.KindPost {
		t.Errorf("expected kind Post, got %s", post.Kind)
	}
	if post.Spec.Title != "Launching Our New Site" {
		t.Errorf("unexpected title %q", post.Spec.Title)
	}
	if post.Spec.Content != "## Hello\n\nNew site." {
		t.Errorf("unexpected content %q", post.Spec.Content)
	}
	if post.Spec.Author.Name != "Amara Okafor" || post.Spec.Author.Role != "Creative Director" {
		t.Errorf("unexpected author %+v", post.Spec.Author)
	}
	if len(post.Spec.Tags) != 2 || post.Spec.Tags[1] != "studio" {
		t.Errorf("unexpected tags %v", post.Spec.Tags)
	}
	if !post.Spec.Featured {
		t.Error("expected featured post")
	}
}

func TestParseProject(t *testing.T) {
	yaml := []byte(`
kind: Project
spec:
  title: Acme Bakery
  description: New identity for a bakery.
  category: Retail
  technologies: [Figma, Shopify]
  websiteUrl: https://acme.example.com
  testimonial:
    text: Lovely work.
    author: Jo
    role: Owner
    company: Acme
  completedAt: "2024-02-01"
  featured: true
`)
	docs, err := ParseBytes(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proj, ok := docs[0].(*v1alpha1.ProjectDocument)
	if !ok {
		t.Fatalf("expected *v1alpha1.ProjectDocument, got %T", docs[0])
	}
	if proj.APIVersion != v1alpha1.APIVersion {
		t.Errorf("expected default apiVersion %s, got %s", v1alpha1.APIVersion, proj.APIVersion)
	}
	if proj.Spec.Testimonial == nil || proj.Spec.Testimonial.Company != "Acme" {
		t.Errorf("unexpected testimonial %+v", proj.Spec.Testimonial)
	}
	if proj.Spec.CompletedAt != "2024-02-01" {
		t.Errorf("unexpected completedAt %q", proj.Spec.CompletedAt)
	}
	if len(proj.Spec.Technologies) != 2 {
		t.Errorf("unexpected technologies %v", proj.Spec.Technologies)
	}
}

func TestParseLegacyProject(t *testing.T) {
	yaml := []byte(`
kind: LegacyProject
spec:
  slug: old-site
  title: Old Site
  client: Old Client
  year: "2019"
  quote:
    text: Still great.
    name: Pat
    position: CEO
`)
	docs, err := ParseBytes(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	legacy, ok := docs[0].(*v1alpha1.LegacyProjectDocument)
	if !ok {
		t.Fatalf("expected *v1alpha1.LegacyProjectDocument, got %T", docs[0])
	}
	if legacy.Spec.Client != "Old Client" || legacy.Spec.Year != "2019" {
		t.Errorf("unexpected spec %+v", legacy.Spec)
	}
	if legacy.Spec.Quote == nil || legacy.Spec.Quote.Position != "CEO" {
		t.Errorf("unexpected quote %+v", legacy.Spec.Quote)
	}
}

func TestParseMultiDocument(t *testing.T) {
	yaml := []byte(`
kind: Post
spec:
  title: First
  content: one
---
---
kind: Project
spec:
  title: Second
---
kind: Post
spec:
  title: Third
  content: three
`)
	docs, err := ParseBytes(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	posts, projects, legacy := Split(docs)
	if len(posts) != 2 || posts[0].Title != "First" || posts[1].Title != "Third" {
		t.Errorf("unexpected posts %+v", posts)
	}
	if len(projects) != 1 || projects[0].Title != "Second" {
		t.Errorf("unexpected projects %+v", projects)
	}
	if len(legacy) != 0 {
		t.Errorf("expected no legacy projects, got %d", len(legacy))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty title", "kind: Post\nspec:\n  content: x\n", "title must not be empty"},
		{"unknown kind", "kind: Invoice\nspec: {}\n", "unknown resource kind"},
		{"wrong api version", "apiVersion: other.dev/v1alpha1\nkind: Post\nspec:\n  title: x\n", "unsupported apiVersion"},
		{"legacy without identity", "kind: LegacyProject\nspec:\n  client: x\n", "title or a slug"},
		{"bad yaml", "kind: Post\nspec: [\n", "decoding yaml document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	content := []byte(`kind: Post
spec:
  title: From File
  content: body
---
kind: Project
spec:
  title: Also From File
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	docs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	docs := append(
		PostDocuments([]v1alpha1.Post{{Title: "A", Content: "a", Tags: []string{"x"}}}),
		ProjectDocuments([]v1alpha1.Project{{ID: "b", Title: "B", Featured: true}})...,
	)

	out, err := Marshal(docs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "kind: Post") || !strings.Contains(string(out), "kind: Project") {
		t.Fatalf("kinds missing from output:\n%s", out)
	}

	parsed, err := ParseBytes(out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	posts, projects, _ := Split(parsed)
	if len(posts) != 1 || posts[0].Tags[0] != "x" {
		t.Errorf("unexpected posts %+v", posts)
	}
	if len(projects) != 1 || projects[0].ID != "b" || !projects[0].Featured {
		t.Errorf("unexpected projects %+v", projects)
	}
}
