package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload both stores from storage",
		Long:  "Ask the server to re-read posts and projects from its storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Refresh()
			if err != nil {
				return err
			}
			if printed, err := printValue(res); printed || err != nil {
				return err
			}
			fmt.Printf("refreshed: %d posts, %d projects\n", res.Posts, res.Projects)
			return nil
		},
	}

	return cmd
}
