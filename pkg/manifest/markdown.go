package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adrg/frontmatter"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// postFrontmatter is the YAML header accepted on markdown posts.
type postFrontmatter struct {
	Title       string          `yaml:"title"`
	Slug        string          `yaml:"slug"`
	Excerpt     string          `yaml:"excerpt"`
	CoverImage  string          `yaml:"coverImage"`
	Author      v1alpha1.Author `yaml:"author"`
	PublishedAt string          `yaml:"publishedAt"`
	Tags        []string        `yaml:"tags"`
	Featured    bool            `yaml:"featured"`
	ReadingTime string          `yaml:"readingTime"`
}

// ParsePostMarkdown reads a markdown file with a YAML frontmatter header and
// returns it as a Post document. The body below the header becomes the
// post content.
func ParsePostMarkdown(r io.Reader) (*v1alpha1.PostDocument, error) {
	var fm postFrontmatter
	body, err := frontmatter.MustParse(r, &fm)
	if err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}

	doc := &v1alpha1.PostDocument{
		TypeMeta: v1alpha1.TypeMeta{APIVersion: v1alpha1.APIVersion, Kind: v1alpha1.KindPost},
		Spec: v1alpha1.Post{
			Slug:        fm.Slug,
			Title:       strings.TrimSpace(fm.Title),
			Excerpt:     fm.Excerpt,
			Content:     strings.TrimSpace(string(body)),
			CoverImage:  fm.CoverImage,
			Author:      fm.Author,
			PublishedAt: fm.PublishedAt,
			Tags:        fm.Tags,
			Featured:    fm.Featured,
			ReadingTime: fm.ReadingTime,
		},
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParsePostMarkdownFile reads path and parses it with ParsePostMarkdown.
func ParsePostMarkdownFile(path string) (*v1alpha1.PostDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := ParsePostMarkdown(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
