package content

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/klubi/folio/internal/slot"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

const (
	// DefaultProjectsSlot is the slot name portfolio projects are stored under.
	DefaultProjectsSlot = "portfolio-projects"

	// DefaultProjectLoadTimeout bounds the project store's initial read.
	DefaultProjectLoadTimeout = 5 * time.Second
)

// ProjectKind describes projects to a Store.
var ProjectKind = Kind[v1alpha1.Project]{
	Name:      v1alpha1.KindProject,
	Preserved: []string{"id"},
	Build:     NewProject,
	Validate:  validateProject,
}

// ProjectStore is the content store for portfolio projects. It adds Migrate
// on top of the generic store.
type ProjectStore struct {
	*Store[v1alpha1.Project]
}

// NewProjectStore creates an Uninitialized project store persisting to
// slotName. Loads are bounded by DefaultProjectLoadTimeout unless opts
// override it.
func NewProjectStore(adapter *slot.Adapter[v1alpha1.Project], slotName string, defaults []v1alpha1.Project, opts ...Option) *ProjectStore {
	if slotName == "" {
		slotName = DefaultProjectsSlot
	}
	opts = append([]Option{WithLoadTimeout(DefaultProjectLoadTimeout)}, opts...)
	return &ProjectStore{Store: NewStore(ProjectKind, adapter, slotName, defaults, opts...)}
}

// Migrate discards whatever is stored, regenerates the collection from the
// defaults and persists it. It returns the new collection.
func (s *ProjectStore) Migrate() []v1alpha1.Project {
	s.logger.Info("migrating projects to defaults", zap.Int("count", len(s.defaults)))
	return s.reset(s.defaults)
}

// NewProject builds a complete project from admin-entered fields. The id is
// derived from the title. completedAt defaults to today.
func NewProject(fields v1alpha1.Project, now time.Time) (v1alpha1.Project, error) {
	p := fields
	p.Title = strings.TrimSpace(p.Title)
	p.ID = Slugify(p.Title)
	if p.CompletedAt == "" {
		p.CompletedAt = now.Format(v1alpha1.DateLayout)
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if err := validateProject(p); err != nil {
		return v1alpha1.Project{}, err
	}
	return p, nil
}

func validateProject(p v1alpha1.Project) error {
	v := validator{kind: v1alpha1.KindProject}
	v.require(strings.TrimSpace(p.Title) != "", "title is required")
	v.require(p.ID != "", "title must contain at least one letter or digit")
	v.require(strings.TrimSpace(p.Description) != "", "description is required")
	v.require(strings.TrimSpace(p.Category) != "", "category is required")
	if p.Testimonial != nil {
		v.require(strings.TrimSpace(p.Testimonial.Text) != "", "testimonial text is required")
	}
	return v.err()
}
