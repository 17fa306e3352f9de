package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <resource-type> <key>",
		Short: "Delete a record",
		Long:  "Delete a post by slug or a project by id. Deleting a missing key is not an error.",
		Example: `  folio delete post seo-basics-for-local-services
  folio delete project smilehub-dental`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, err := normalizeResourceType(args[0])
			if err != nil {
				return err
			}
			key := args[1]

			switch resourceType {
			case resourcePosts:
				if err := apiClient.DeletePost(key); err != nil {
					return err
				}
				fmt.Printf("post/%s deleted\n", key)

			case resourceProjects:
				if err := apiClient.DeleteProject(key); err != nil {
					return err
				}
				fmt.Printf("project/%s deleted\n", key)
			}

			return nil
		},
	}

	return cmd
}
