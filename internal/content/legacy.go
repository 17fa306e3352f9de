package content

import (
	"regexp"
	"strings"

	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

var (
	fullDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearOnly = regexp.MustCompile(`^\d{4}$`)
)

// ConvertLegacyProject maps a record in the pre-Project shape onto Project.
// It is total: every input yields a record and every legacy field lands
// somewhere.
func ConvertLegacyProject(lp v1alpha1.LegacyProject) v1alpha1.Project {
	p := v1alpha1.Project{
		ID:              lp.Slug,
		Title:           lp.Title,
		Description:     lp.Summary,
		LongDescription: lp.Body,
		Image:           lp.Thumbnail,
		Gallery:         copyStrings(lp.Images),
		Category:        lp.Category,
		Technologies:    copyStrings(lp.Stack),
		Features:        copyStrings(lp.Highlights),
		WebsiteURL:      lp.URL,
		CompletedAt:     legacyCompletedAt(lp.Year),
		Featured:        lp.Featured,
	}

	if p.ID == "" {
		p.ID = Slugify(lp.Title)
	}
	if strings.TrimSpace(p.Description) == "" && lp.Client != "" {
		p.Description = "Project for " + lp.Client + "."
	}

	if lp.Quote != nil {
		company := lp.Quote.Company
		if company == "" {
			company = lp.Client
		}
		p.Testimonial = &v1alpha1.Testimonial{
			Text:    lp.Quote.Text,
			Author:  lp.Quote.Name,
			Role:    lp.Quote.Position,
			Company: company,
		}
	}
	return p
}

// ConvertLegacyProjects converts a whole legacy collection, keeping order.
func ConvertLegacyProjects(legacy []v1alpha1.LegacyProject) []v1alpha1.Project {
	out := make([]v1alpha1.Project, 0, len(legacy))
	for _, lp := range legacy {
		out = append(out, ConvertLegacyProject(lp))
	}
	return out
}

// legacyCompletedAt turns a legacy year into a completion date. A bare year
// becomes the last day of that year; anything else is carried over verbatim.
func legacyCompletedAt(year string) string {
	year = strings.TrimSpace(year)
	switch {
	case fullDate.MatchString(year):
		return year
	case yearOnly.MatchString(year):
		return year + "-12-31"
	default:
		return year
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
