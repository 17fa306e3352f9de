package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var showHTML bool

	cmd := &cobra.Command{
		Use:   "describe <resource-type> <key>",
		Short: "Show detailed info about a record",
		Long:  "Print every field of a post or project.",
		Example: `  folio describe post why-small-businesses-need-a-fast-website
  folio describe post seo-basics-for-local-services --html
  folio describe project smilehub-dental`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, err := normalizeResourceType(args[0])
			if err != nil {
				return err
			}
			if resourceType == resourcePosts {
				return describePost(args[1], showHTML)
			}
			return describeProject(args[1])
		},
	}

	cmd.Flags().BoolVar(&showHTML, "html", false, "Print the rendered HTML body instead of the markdown source")

	return cmd
}

func describePost(slug string, showHTML bool) error {
	post, err := apiClient.GetPost(slug)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)

	bold.Println("Post:")
	printField("  Slug", post.Slug)
	printField("  Title", post.Title)
	printField("  Published", post.PublishedAt)
	printField("  Reading Time", post.ReadingTime)
	printField("  Tags", formatStringSlice(post.Tags))
	printField("  Featured", featuredMark(post.Featured))
	printField("  Cover Image", post.CoverImage)

	fmt.Println()
	bold.Println("Author:")
	printField("  Name", post.Author.Name)
	printField("  Role", post.Author.Role)
	printField("  Avatar", post.Author.Avatar)

	fmt.Println()
	bold.Println("Excerpt:")
	fmt.Println(indent(post.Excerpt))

	fmt.Println()
	if showHTML {
		html, err := apiClient.RenderPost(slug)
		if err != nil {
			return err
		}
		bold.Println("Body (HTML):")
		fmt.Println(indent(html))
		return nil
	}
	bold.Println("Body:")
	fmt.Println(indent(post.Content))

	return nil
}

func describeProject(id string) error {
	proj, err := apiClient.GetProject(id)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)

	bold.Println("Project:")
	printField("  ID", proj.ID)
	printField("  Title", proj.Title)
	printField("  Category", proj.Category)
	printField("  Completed", proj.CompletedAt)
	printField("  Featured", featuredMark(proj.Featured))
	printField("  Website", proj.WebsiteURL)
	printField("  Image", proj.Image)
	printField("  Gallery", formatStringSlice(proj.Gallery))
	printField("  Technologies", formatStringSlice(proj.Technologies))

	fmt.Println()
	bold.Println("Description:")
	fmt.Println(indent(proj.Description))
	if proj.LongDescription != "" {
		fmt.Println()
		fmt.Println(indent(proj.LongDescription))
	}

	if len(proj.Features) > 0 {
		fmt.Println()
		bold.Println("Features:")
		for _, f := range proj.Features {
			fmt.Printf("  - %s\n", f)
		}
	}

	if t := proj.Testimonial; t != nil {
		fmt.Println()
		bold.Println("Testimonial:")
		fmt.Println(indent(fmt.Sprintf("%q", t.Text)))
		printField("  Author", t.Author)
		printField("  Role", t.Role)
		printField("  Company", t.Company)
	}

	return nil
}

// --- Helpers ---

func printField(label, value string) {
	if value == "" {
		value = "<none>"
	}
	fmt.Printf("%-24s%s\n", label+":", value)
}

func formatStringSlice(items []string) string {
	if len(items) == 0 {
		return "<none>"
	}
	return strings.Join(items, ", ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// indent prefixes every line of s with two spaces.
func indent(s string) string {
	if s == "" {
		return "  <none>"
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
