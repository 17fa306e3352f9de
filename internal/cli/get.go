package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
	"github.com/klubi/folio/pkg/client"
)

func newGetCmd() *cobra.Command {
	var (
		featuredOnly bool
		tag          string
		category     string
	)

	cmd := &cobra.Command{
		Use:   "get <resource-type> [key]",
		Short: "List or get content",
		Long: `Display one or many records.

Resource types: posts (post), projects (project, proj)`,
		Example: `  folio get posts
  folio get posts --tag design
  folio get post hello-world -o yaml
  folio get projects --featured
  folio get projects --category Healthcare`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, err := normalizeResourceType(args[0])
			if err != nil {
				return err
			}

			var key string
			if len(args) > 1 {
				key = args[1]
			}

			filter := client.ListFilter{Tag: tag, Category: category}
			if featuredOnly {
				filter.Featured = &featuredOnly
			}

			if resourceType == resourcePosts {
				return getPosts(key, filter)
			}
			return getProjects(key, filter)
		},
	}

	cmd.Flags().BoolVar(&featuredOnly, "featured", false, "Only featured records")
	cmd.Flags().StringVar(&tag, "tag", "", "Only posts with this tag")
	cmd.Flags().StringVar(&category, "category", "", "Only projects in this category")

	return cmd
}

func getPosts(slug string, filter client.ListFilter) error {
	if slug != "" {
		post, err := apiClient.GetPost(slug)
		if err != nil {
			return err
		}
		return printOne(post, postHeaders(), postToRow)
	}

	posts, err := apiClient.ListPosts(filter)
	if err != nil {
		return err
	}
	if len(posts) == 0 && outputFormat == formatTable {
		fmt.Println("No posts found.")
		return nil
	}
	return printList(posts, postHeaders(), postToRow)
}

func getProjects(id string, filter client.ListFilter) error {
	if id != "" {
		proj, err := apiClient.GetProject(id)
		if err != nil {
			return err
		}
		return printOne(proj, projectHeaders(), projectToRow)
	}

	projects, err := apiClient.ListProjects(filter)
	if err != nil {
		return err
	}
	if len(projects) == 0 && outputFormat == formatTable {
		fmt.Println("No projects found.")
		return nil
	}
	return printList(projects, projectHeaders(), projectToRow)
}

func postHeaders() []string {
	return []string{"SLUG", "TITLE", "AUTHOR", "PUBLISHED", "TAGS", "FEATURED"}
}

func postToRow(p *v1alpha1.Post) []string {
	return []string{
		p.Slug,
		truncate(p.Title, 40),
		p.Author.Name,
		p.PublishedAt,
		strings.Join(p.Tags, ","),
		featuredMark(p.Featured),
	}
}

func projectHeaders() []string {
	return []string{"ID", "TITLE", "CATEGORY", "COMPLETED", "FEATURED"}
}

func projectToRow(p *v1alpha1.Project) []string {
	return []string{
		p.ID,
		truncate(p.Title, 40),
		p.Category,
		p.CompletedAt,
		featuredMark(p.Featured),
	}
}

// featuredMark returns a colored yes/no.
func featuredMark(featured bool) string {
	if featured {
		return color.GreenString("yes")
	}
	return color.HiBlackString("no")
}
