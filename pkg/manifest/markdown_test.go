package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParsePostMarkdown(t *testing.T) {
	src := `---
title: "  Writing for the Web  "
excerpt: Short and scannable.
coverImage: /images/web.jpg
author:
  name: Daniel Mensah
  role: Brand Designer
tags: [writing, content]
featured: true
---

## Keep it short

Readers skim.
`
	doc, err := ParsePostMarkdown(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Spec.Title != "Writing for the Web" {
		t.Errorf("unexpected title %q", doc.Spec.Title)
	}
	if doc.Spec.Content != "## Keep it short\n\nReaders skim." {
		t.Errorf("unexpected content %q", doc.Spec.Content)
	}
	if doc.Spec.Author.Name != "Daniel Mensah" {
		t.Errorf("unexpected author %+v", doc.Spec.Author)
	}
	if len(doc.Spec.Tags) != 2 || !doc.Spec.Featured {
		t.Errorf("unexpected tags/featured %v %v", doc.Spec.Tags, doc.Spec.Featured)
	}
	if doc.Kind != "Post" {
		t.Errorf("unexpected kind %q", doc.Kind)
	}
}

func TestParsePostMarkdownErrors(t *testing.T) {
	if _, err := ParsePostMarkdown(strings.NewReader("# no header\n")); err == nil {
		t.Error("expected error for missing frontmatter")
	}
	if _, err := ParsePostMarkdown(strings.NewReader("---\nexcerpt: x\n---\nbody\n")); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestParsePostMarkdownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte("---\ntitle: On Disk\n---\nBody\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ParsePostMarkdownFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Spec.Title != "On Disk" || doc.Spec.Content != "Body" {
		t.Errorf("unexpected spec %+v", doc.Spec)
	}
}
