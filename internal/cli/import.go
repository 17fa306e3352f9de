package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/klubi/folio/pkg/manifest"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.md|dir>...",
		Short: "Import markdown posts",
		Long: `Apply markdown files with a YAML frontmatter header as posts.
Directories are scanned for *.md files (not recursively).`,
		Example: `  folio import drafts/launch-checklist.md
  folio import drafts/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := markdownFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No markdown files found.")
				return nil
			}

			for _, path := range files {
				doc, err := manifest.ParsePostMarkdownFile(path)
				if err != nil {
					return err
				}
				if err := applyDocument(doc); err != nil {
					return err
				}
			}
			return nil
		},
	}

	return cmd
}

// markdownFiles expands directories into the *.md files they contain.
func markdownFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.md"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}
