// Package manifest provides YAML manifest parsing for Folio content.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// ParseFile reads a YAML file at the given path and parses it into typed
// documents. Multi-document YAML (separated by ---) is supported.
func ParseFile(path string) ([]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file %s: %w", path, err)
	}
	return ParseBytes(data)
}

// ParseBytes parses raw YAML bytes into *v1alpha1.PostDocument,
// *v1alpha1.ProjectDocument and *v1alpha1.LegacyProjectDocument values.
// Multi-document YAML (separated by ---) is supported.
func ParseBytes(data []byte) ([]interface{}, error) {
	return parseDocuments(data)
}

// parseDocuments splits multi-document YAML and decodes each document into
// its concrete document type.
func parseDocuments(data []byte) ([]interface{}, error) {
	var docs []interface{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))

	for i := 0; ; i++ {
		// Decode into a generic yaml.Node so we can re-decode it.
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding yaml document %d: %w", i, err)
		}

		if node.Kind == 0 {
			continue
		}

		// First pass: extract TypeMeta to determine the Kind.
		var meta v1alpha1.TypeMeta
		if err := node.Decode(&meta); err != nil {
			return nil, fmt.Errorf("decoding type meta of document %d: %w", i, err)
		}
		if meta.Kind == "" && meta.APIVersion == "" {
			continue
		}
		if meta.APIVersion != "" && meta.APIVersion != v1alpha1.APIVersion {
			return nil, fmt.Errorf("document %d: unsupported apiVersion %q", i, meta.APIVersion)
		}

		doc, err := decodeDocument(&node, meta.Kind)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if err := validateDocument(doc); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// decodeDocument unmarshals a yaml.Node into the concrete type for kind and
// fills in the default apiVersion.
func decodeDocument(node *yaml.Node, kind string) (interface{}, error) {
	switch kind {
	case v1alpha1.KindPost:
		var d v1alpha1.PostDocument
		if err := node.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding Post: %w", err)
		}
		d.APIVersion = v1alpha1.APIVersion
		return &d, nil

	case v1alpha1.KindProject:
		var d v1alpha1.ProjectDocument
		if err := node.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding Project: %w", err)
		}
		d.APIVersion = v1alpha1.APIVersion
		return &d, nil

	case v1alpha1.KindLegacyProject:
		var d v1alpha1.LegacyProjectDocument
		if err := node.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding LegacyProject: %w", err)
		}
		d.APIVersion = v1alpha1.APIVersion
		return &d, nil

	default:
		return nil, fmt.Errorf("unknown resource kind: %q", kind)
	}
}

// validateDocument checks the fields every document needs before it reaches
// a store. The stores run their own, stricter validation on add.
func validateDocument(doc interface{}) error {
	switch d := doc.(type) {
	case *v1alpha1.PostDocument:
		if d.Spec.Title == "" {
			return fmt.Errorf("validation failed: Post title must not be empty")
		}
	case *v1alpha1.ProjectDocument:
		if d.Spec.Title == "" {
			return fmt.Errorf("validation failed: Project title must not be empty")
		}
	case *v1alpha1.LegacyProjectDocument:
		if d.Spec.Title == "" && d.Spec.Slug == "" {
			return fmt.Errorf("validation failed: LegacyProject needs a title or a slug")
		}
	}
	return nil
}

// Split sorts parsed documents by kind, keeping file order within each kind.
func Split(docs []interface{}) (posts []v1alpha1.Post, projects []v1alpha1.Project, legacy []v1alpha1.LegacyProject) {
	for _, doc := range docs {
		switch d := doc.(type) {
		case *v1alpha1.PostDocument:
			posts = append(posts, d.Spec)
		case *v1alpha1.ProjectDocument:
			projects = append(projects, d.Spec)
		case *v1alpha1.LegacyProjectDocument:
			legacy = append(legacy, d.Spec)
		}
	}
	return posts, projects, legacy
}

// Marshal renders documents as multi-document YAML.
func Marshal(docs []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding document: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PostDocuments wraps posts as manifest documents.
func PostDocuments(posts []v1alpha1.Post) []interface{} {
	docs := make([]interface{}, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, &v1alpha1.PostDocument{
			TypeMeta: v1alpha1.TypeMeta{APIVersion: v1alpha1.APIVersion, Kind: v1alpha1.KindPost},
			Spec:     p,
		})
	}
	return docs
}

// ProjectDocuments wraps projects as manifest documents.
func ProjectDocuments(projects []v1alpha1.Project) []interface{} {
	docs := make([]interface{}, 0, len(projects))
	for _, p := range projects {
		docs = append(docs, &v1alpha1.ProjectDocument{
			TypeMeta: v1alpha1.TypeMeta{APIVersion: v1alpha1.APIVersion, Kind: v1alpha1.KindProject},
			Spec:     p,
		})
	}
	return docs
}
