package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Reset projects to the converted legacy defaults",
		Long: `Replace every stored project with the bundled legacy portfolio,
converted to the current project shape. Edits made since are lost.`,
		Example: `  folio migrate
  folio migrate -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := apiClient.MigrateProjects()
			if err != nil {
				return err
			}

			if outputFormat == formatTable {
				color.New(color.FgCyan, color.Bold).Printf("Migrated %d projects\n", len(projects))
				fmt.Println()
			}
			return printList(projects, projectHeaders(), projectToRow)
		},
	}

	return cmd
}
