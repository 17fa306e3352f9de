package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/klubi/folio/pkg/apis/v1alpha1"
)

var (
	postHeaders    = []string{"SLUG", "TITLE", "PUBLISHED", "TAGS", "FEATURED"}
	projectHeaders = []string{"ID", "TITLE", "CATEGORY", "COMPLETED", "FEATURED"}
)

// matchesFilter returns true if any of the values contain the filter string,
// ignoring case.
func matchesFilter(filter string, values ...string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), filter) {
			return true
		}
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// postRows returns the table rows for posts matching filter.
func postRows(posts []v1alpha1.Post, filter string) [][]string {
	var rows [][]string
	for _, p := range posts {
		tags := strings.Join(p.Tags, ",")
		if !matchesFilter(filter, p.Slug, p.Title, p.Author.Name, tags) {
			continue
		}
		rows = append(rows, []string{p.Slug, p.Title, p.PublishedAt, tags, yesNo(p.Featured)})
	}
	return rows
}

// projectRows returns the table rows for projects matching filter.
func projectRows(projects []v1alpha1.Project, filter string) [][]string {
	var rows [][]string
	for _, p := range projects {
		if !matchesFilter(filter, p.ID, p.Title, p.Category, strings.Join(p.Technologies, ",")) {
			continue
		}
		rows = append(rows, []string{p.ID, p.Title, p.Category, p.CompletedAt, yesNo(p.Featured)})
	}
	return rows
}

// featuredState reports the featured flag of the record with key in view.
func featuredState(view, key string, posts []v1alpha1.Post, projects []v1alpha1.Project) (featured, ok bool) {
	if view == viewPosts {
		for _, p := range posts {
			if p.Slug == key {
				return p.Featured, true
			}
		}
		return false, false
	}
	for _, p := range projects {
		if p.ID == key {
			return p.Featured, true
		}
	}
	return false, false
}

func featuredColor(text string) tcell.Color {
	if text == "yes" {
		return tcell.ColorGreen
	}
	return tcell.ColorGray
}

func formatPostDescribe(post *v1alpha1.Post) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[::b]Slug:[-::-]         %s\n", post.Slug))
	b.WriteString(fmt.Sprintf("[::b]Title:[-::-]        %s\n", tview.Escape(post.Title)))
	b.WriteString(fmt.Sprintf("[::b]Author:[-::-]       %s (%s)\n", post.Author.Name, post.Author.Role))
	b.WriteString(fmt.Sprintf("[::b]Published:[-::-]    %s\n", post.PublishedAt))
	b.WriteString(fmt.Sprintf("[::b]Reading Time:[-::-] %s\n", post.ReadingTime))
	if len(post.Tags) > 0 {
		b.WriteString(fmt.Sprintf("[::b]Tags:[-::-]         %s\n", strings.Join(post.Tags, ", ")))
	}
	b.WriteString(fmt.Sprintf("[::b]Featured:[-::-]     [%s]%s[-]\n",
		colorName(post.Featured), yesNo(post.Featured)))
	if post.CoverImage != "" {
		b.WriteString(fmt.Sprintf("[::b]Cover:[-::-]        %s\n", post.CoverImage))
	}
	if post.Excerpt != "" {
		b.WriteString(fmt.Sprintf("\n[::b]Excerpt:[-::-]\n%s\n", tview.Escape(post.Excerpt)))
	}
	b.WriteString(fmt.Sprintf("\n[::b]Content:[-::-]\n%s\n", tview.Escape(post.Content)))
	return b.String()
}

func formatProjectDescribe(proj *v1alpha1.Project) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[::b]ID:[-::-]           %s\n", proj.ID))
	b.WriteString(fmt.Sprintf("[::b]Title:[-::-]        %s\n", tview.Escape(proj.Title)))
	b.WriteString(fmt.Sprintf("[::b]Category:[-::-]     %s\n", proj.Category))
	b.WriteString(fmt.Sprintf("[::b]Completed:[-::-]    %s\n", proj.CompletedAt))
	b.WriteString(fmt.Sprintf("[::b]Featured:[-::-]     [%s]%s[-]\n",
		colorName(proj.Featured), yesNo(proj.Featured)))
	if proj.WebsiteURL != "" {
		b.WriteString(fmt.Sprintf("[::b]Website:[-::-]      %s\n", proj.WebsiteURL))
	}
	if len(proj.Technologies) > 0 {
		b.WriteString(fmt.Sprintf("[::b]Technologies:[-::-] %s\n", strings.Join(proj.Technologies, ", ")))
	}
	b.WriteString(fmt.Sprintf("\n[::b]Description:[-::-]\n%s\n", tview.Escape(proj.Description)))
	if proj.LongDescription != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", tview.Escape(proj.LongDescription)))
	}
	if len(proj.Features) > 0 {
		b.WriteString("\n[::b]Features:[-::-]\n")
		for _, f := range proj.Features {
			b.WriteString(fmt.Sprintf("  - %s\n", tview.Escape(f)))
		}
	}
	if t := proj.Testimonial; t != nil {
		b.WriteString("\n[::b]Testimonial:[-::-]\n")
		b.WriteString(fmt.Sprintf("  %s\n", tview.Escape(fmt.Sprintf("%q", t.Text))))
		b.WriteString(fmt.Sprintf("  %s, %s", t.Author, t.Role))
		if t.Company != "" {
			b.WriteString(fmt.Sprintf(", %s", t.Company))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func colorName(featured bool) string {
	if featured {
		return "green"
	}
	return "gray"
}
