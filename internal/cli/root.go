package cli

import (
	"github.com/spf13/cobra"

	"github.com/klubi/folio/internal/config"
	"github.com/klubi/folio/pkg/client"
)

var (
	serverAddr string
	configFile string
	apiClient  *client.Client
	appConfig  *config.Config
)

// NewRootCmd creates the top-level folio CLI command with all subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folio",
		Short: "Content store for the agency site",
		Long: `Folio keeps the agency site's blog posts and portfolio projects.
Serve them over HTTP, edit them from the terminal, and keep every
open session in step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(); err != nil {
				return err
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			appConfig = cfg

			// Commands that run locally do not need the API client.
			switch cmd.Name() {
			case "serve", "init":
				return nil
			}
			if !cmd.Flags().Changed("server") {
				serverAddr = "http://" + cfg.ServerAddress()
			}
			apiClient = client.New(serverAddr)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./folio.yaml or ~/.folio/folio.yaml)")
	cmd.PersistentFlags().StringVar(&serverAddr, "server", "http://127.0.0.1:7117", "Folio server address")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table|json|yaml")

	cmd.AddCommand(
		newServeCmd(),
		newApplyCmd(),
		newGetCmd(),
		newDescribeCmd(),
		newDeleteCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newRefreshCmd(),
		newStatusCmd(),
		newUICmd(),
		newInitCmd(),
	)

	return cmd
}
