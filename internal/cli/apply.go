package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
	"github.com/klubi/folio/pkg/manifest"
)

func newApplyCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "apply -f <file>",
		Short: "Apply a manifest file",
		Long: `Create or update records from a YAML manifest file.

A record whose title derives to an existing key is updated in place;
anything else is added.`,
		Example: `  folio apply -f content.yaml
  folio apply -f legacy-projects.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := manifest.ParseFile(filename)
			if err != nil {
				return fmt.Errorf("parsing manifest %s: %w", filename, err)
			}

			if len(docs) == 0 {
				fmt.Println("No documents found in manifest.")
				return nil
			}

			for _, doc := range docs {
				if err := applyDocument(doc); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "Path to manifest file (required)")
	cmd.MarkFlagRequired("filename")

	return cmd
}

// applyDocument sends one document to the server and reports the stored key.
func applyDocument(doc interface{}) error {
	kind, title := documentIdentity(doc)

	stored, err := apiClient.Apply(doc)
	if err != nil {
		return fmt.Errorf("applying %s %q: %w", kind, title, err)
	}

	key, _ := stored["slug"].(string)
	if key == "" {
		key, _ = stored["id"].(string)
	}
	fmt.Printf("%s/%s configured\n", kind, key)
	return nil
}

// documentIdentity extracts the kind and title from a parsed document.
func documentIdentity(doc interface{}) (kind, title string) {
	switch d := doc.(type) {
	case *v1alpha1.PostDocument:
		return "post", d.Spec.Title
	case *v1alpha1.ProjectDocument:
		return "project", d.Spec.Title
	case *v1alpha1.LegacyProjectDocument:
		return "project", d.Spec.Title
	default:
		return "unknown", "unknown"
	}
}
