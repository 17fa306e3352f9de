package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe key from a human title: lowercase, every run of
// characters outside [a-z0-9] becomes a single hyphen, edge hyphens trimmed.
//
//	Slugify("Hello World!!") => "hello-world"
func Slugify(title string) string {
	lower := cases.Lower(language.Und).String(title)
	return strings.Trim(nonSlugRun.ReplaceAllString(lower, "-"), "-")
}
