package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/klubi/folio/internal/config"
	"github.com/klubi/folio/internal/content"
	"github.com/klubi/folio/pkg/manifest"
)

func newInitCmd() *cobra.Command {
	var (
		storeType string
		withSeed  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter folio.yaml",
		Long: `Create folio.yaml in the current directory. With --seed, also write
content.yaml holding the bundled posts and projects so they can be edited
and used as the server's seed file.`,
		Example: `  folio init
  folio init --store sqlite --seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			cfg := config.DefaultConfig()
			cfg.Store.Type = storeType
			if withSeed {
				cfg.Content.SeedFile = "content.yaml"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			configPath := filepath.Join(cwd, "folio.yaml")
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			if err := writeNewFile(configPath, data); err != nil {
				return err
			}

			var seedPath string
			if withSeed {
				docs := append(manifest.PostDocuments(content.DefaultPosts()),
					manifest.ProjectDocuments(content.DefaultProjects())...)
				seed, err := manifest.Marshal(docs)
				if err != nil {
					return err
				}
				seedPath = filepath.Join(cwd, "content.yaml")
				if err := writeNewFile(seedPath, seed); err != nil {
					return err
				}
			}

			bold := color.New(color.FgCyan, color.Bold)
			bold.Println("Folio initialized!")
			fmt.Println()
			fmt.Printf("  Config: %s\n", configPath)
			if seedPath != "" {
				fmt.Printf("  Seed:   %s\n", seedPath)
			}
			fmt.Println()

			color.New(color.Bold).Println("Next steps:")
			fmt.Println("  1. Start the server:")
			fmt.Println("     folio serve")
			fmt.Println()
			fmt.Println("  2. Browse the content:")
			fmt.Println("     folio get posts")
			fmt.Println("     folio ui")

			return nil
		},
	}

	cmd.Flags().StringVar(&storeType, "store", config.StoreBolt, "Store type: bolt|sqlite|file|memory")
	cmd.Flags().BoolVar(&withSeed, "seed", false, "Also write content.yaml with the bundled content")

	return cmd
}

func writeNewFile(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file %s already exists", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
