package cli

import (
	"fmt"
	"strings"
)

const (
	resourcePosts    = "posts"
	resourceProjects = "projects"
)

// normalizeResourceType maps various aliases to canonical resource type names.
func normalizeResourceType(t string) (string, error) {
	switch strings.ToLower(t) {
	case "post", "posts", "blog":
		return resourcePosts, nil
	case "project", "projects", "proj", "portfolio":
		return resourceProjects, nil
	default:
		return "", fmt.Errorf("unknown resource type %q. Valid types: posts, projects", t)
	}
}
