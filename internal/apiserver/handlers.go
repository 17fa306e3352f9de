package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/klubi/folio/internal/content"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// writeJSON serialises data as JSON and writes it to the response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// writeError writes a JSON error envelope to the response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeStoreError maps an Add/Update error to a response. Validation
// failures are the client's fault; anything else is a bad request body.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var verr *content.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: verr.Error(), Problems: verr.Problems})
		return
	}
	s.writeError(w, http.StatusBadRequest, err.Error())
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (value, set bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, errors.New("invalid " + name + " parameter: " + raw)
	}
	return value, true, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"posts":    content.Posts(r.Context()).State().String(),
		"projects": content.Projects(r.Context()).State().String(),
	})
}

// ---------------------------------------------------------------------------
// Posts
// ---------------------------------------------------------------------------

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	featured, filterFeatured, err := boolQuery(r, "featured")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tag := r.URL.Query().Get("tag")

	posts := make([]v1alpha1.Post, 0)
	for _, p := range content.Posts(r.Context()).List() {
		if filterFeatured && p.Featured != featured {
			continue
		}
		if tag != "" && !containsFold(p.Tags, tag) {
			continue
		}
		posts = append(posts, p)
	}

	s.writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p, ok := content.Posts(r.Context()).Get(slug)
	if !ok {
		s.writeError(w, http.StatusNotFound, "post not found")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRenderPost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p, ok := content.Posts(r.Context()).Get(slug)
	if !ok {
		s.writeError(w, http.StatusNotFound, "post not found")
		return
	}
	html, err := s.renderer.HTML(p.Content)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var fields v1alpha1.Post
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := content.Posts(r.Context()).Add(fields)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, found, err := content.Posts(r.Context()).Update(slug, fields)
	if !found {
		s.writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	content.Posts(r.Context()).Delete(mux.Vars(r)["slug"])
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	featured, filterFeatured, err := boolQuery(r, "featured")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	category := r.URL.Query().Get("category")

	projects := make([]v1alpha1.Project, 0)
	for _, p := range content.Projects(r.Context()).List() {
		if filterFeatured && p.Featured != featured {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		projects = append(projects, p)
	}

	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, ok := content.Projects(r.Context()).Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "project not found")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var fields v1alpha1.Project
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := content.Projects(r.Context()).Add(fields)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, found, err := content.Projects(r.Context()).Update(id, fields)
	if !found {
		s.writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	content.Projects(r.Context()).Delete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMigrateProjects(w http.ResponseWriter, r *http.Request) {
	projects := content.Projects(r.Context()).Migrate()
	s.logger.Info("projects migrated", zap.Int("count", len(projects)))
	s.writeJSON(w, http.StatusOK, projects)
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

// RefreshResponse reports collection sizes after a reload.
type RefreshResponse struct {
	Posts    int `json:"posts"`
	Projects int `json:"projects"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, projects := content.Posts(ctx), content.Projects(ctx)

	if err := posts.Refresh(ctx); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err := projects.Refresh(ctx); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, RefreshResponse{
		Posts:    len(posts.List()),
		Projects: len(projects.List()),
	})
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

// handleApply creates the record a manifest document describes, or merges it
// into the existing record with the same key. Posts and projects are keyed by
// their title; a converted legacy project keeps its legacy slug.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	// First, peek at the kind so we know which concrete type to decode into.
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var meta v1alpha1.TypeMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		s.writeError(w, http.StatusBadRequest, "cannot determine resource kind: "+err.Error())
		return
	}
	if meta.APIVersion != "" && meta.APIVersion != v1alpha1.APIVersion {
		s.writeError(w, http.StatusBadRequest, "unsupported apiVersion: "+meta.APIVersion)
		return
	}

	ctx := r.Context()

	switch meta.Kind {
	case v1alpha1.KindPost:
		var doc v1alpha1.PostDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		posts := content.Posts(ctx)
		applyRecord(s, w, posts, content.Slugify(doc.Spec.Title), doc.Spec, posts.Add)

	case v1alpha1.KindProject:
		var doc v1alpha1.ProjectDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		projects := content.Projects(ctx).Store
		applyRecord(s, w, projects, content.Slugify(doc.Spec.Title), doc.Spec, projects.Add)

	case v1alpha1.KindLegacyProject:
		var doc v1alpha1.LegacyProjectDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// A converted record keeps the legacy slug as its id.
		projects := content.Projects(ctx).Store
		converted := content.ConvertLegacyProject(doc.Spec)
		applyRecord(s, w, projects, converted.ID, converted, func(p v1alpha1.Project) (v1alpha1.Project, error) {
			created, _, err := projects.Put(p)
			return created, err
		})

	default:
		s.writeError(w, http.StatusBadRequest, "unsupported kind: "+meta.Kind)
	}
}

// applyRecord merges spec into the record stored under key, or creates it
// with create when there is none.
func applyRecord[T content.Entity](s *Server, w http.ResponseWriter, st *content.Store[T], key string, spec T, create func(T) (T, error)) {
	if _, exists := st.Get(key); exists {
		fields, err := toFields(spec)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, _, err := st.Update(key, fields)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, updated)
		return
	}

	created, err := create(spec)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

// toFields turns a record into the field map Update merges. Empty strings
// and nulls are dropped so fields a document leaves out keep their values.
func toFields(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for name, value := range fields {
		if value == nil || value == "" {
			delete(fields, name)
		}
	}
	return fields, nil
}
