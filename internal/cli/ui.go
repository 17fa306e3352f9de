package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klubi/folio/internal/tui"
)

func newUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ui",
		Aliases: []string{"dashboard"},
		Short:   "Launch the interactive terminal UI",
		Long:    "Browse and edit posts and projects in a terminal UI that follows server changes live.",
		Example: `  folio ui
  folio ui --server http://127.0.0.1:7117`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := tui.NewApp(apiClient)
			if err := app.Run(); err != nil {
				return fmt.Errorf("UI error: %w", err)
			}
			return nil
		},
	}

	return cmd
}
