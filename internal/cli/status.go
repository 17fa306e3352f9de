package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
	"github.com/klubi/folio/pkg/client"
)

func newStatusCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a content summary",
		Long:  "Display an overview of the posts and projects the server holds.",
		Example: `  folio status
  folio status --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return statusWatch()
			}
			return statusPrint()
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Redraw whenever the content changes")

	return cmd
}

func statusPrint() error {
	if err := apiClient.Healthz(); err != nil {
		color.Red("Folio: UNREACHABLE")
		return fmt.Errorf("cannot reach server: %w", err)
	}

	bold := color.New(color.FgCyan, color.Bold)
	bold.Println("Folio Content Status")
	fmt.Println("====================")
	fmt.Println()

	posts, err := apiClient.ListPosts(client.ListFilter{})
	if err != nil {
		return fmt.Errorf("listing posts: %w", err)
	}
	tags := map[string]int{}
	featuredPosts := 0
	for _, p := range posts {
		if p.Featured {
			featuredPosts++
		}
		for _, t := range p.Tags {
			tags[t]++
		}
	}
	fmt.Printf("Posts: %d total", len(posts))
	if len(posts) > 0 {
		fmt.Printf(" (%s)", color.GreenString("%d featured", featuredPosts))
	}
	fmt.Println()
	if len(tags) > 0 {
		fmt.Printf("  Tags: %s\n", formatCounts(tags))
	}

	projects, err := apiClient.ListProjects(client.ListFilter{})
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	categories := map[string]int{}
	featuredProjects, withTestimonial := 0, 0
	for _, p := range projects {
		if p.Featured {
			featuredProjects++
		}
		if p.Testimonial != nil {
			withTestimonial++
		}
		categories[p.Category]++
	}
	fmt.Printf("Projects: %d total", len(projects))
	if len(projects) > 0 {
		fmt.Printf(" (%s, %d with testimonial)",
			color.GreenString("%d featured", featuredProjects), withTestimonial)
	}
	fmt.Println()
	if len(categories) > 0 {
		fmt.Printf("  Categories: %s\n", formatCounts(categories))
	}

	return nil
}

// statusWatch redraws the summary every time the server reports a change.
func statusWatch() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	events, err := apiClient.Watch(ctx)
	if err != nil {
		return err
	}

	for evt := range events {
		// Clear screen with ANSI escape.
		fmt.Print("\033[2J\033[H")

		if err := statusPrint(); err != nil {
			fmt.Printf("\nError: %v\n", err)
		}

		fmt.Printf("\nLast change: %s", describeEvent(evt))
		fmt.Printf("\nUpdated: %s (Ctrl+C to stop)\n", time.Now().Format("15:04:05"))
	}
	return nil
}

func describeEvent(evt v1alpha1.ChangeEvent) string {
	if evt.Type == v1alpha1.ChangeWelcome {
		return "connected"
	}
	return fmt.Sprintf("%s in %s (%d records) %s ago", evt.Kind, evt.Slot, evt.Count, formatAge(evt.At))
}

// formatCounts renders name=count pairs sorted by name.
func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%d", n, counts[n])
	}
	return strings.Join(parts, ", ")
}
