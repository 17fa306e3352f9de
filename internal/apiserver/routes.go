package apiserver

// registerRoutes wires every API endpoint to its handler.
func (s *Server) registerRoutes() {
	s.router.Use(s.logRequests, s.withProvider)

	api := s.router.PathPrefix("/api/v1alpha1").Subrouter()

	// Health
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")

	// Posts
	api.HandleFunc("/posts", s.handleListPosts).Methods("GET")
	api.HandleFunc("/posts", s.handleCreatePost).Methods("POST")
	api.HandleFunc("/posts/{slug}", s.handleGetPost).Methods("GET")
	api.HandleFunc("/posts/{slug}", s.handleUpdatePost).Methods("PATCH")
	api.HandleFunc("/posts/{slug}", s.handleDeletePost).Methods("DELETE")
	api.HandleFunc("/posts/{slug}/html", s.handleRenderPost).Methods("GET")

	// Projects. The literal migrate route is registered before {id}.
	api.HandleFunc("/projects", s.handleListProjects).Methods("GET")
	api.HandleFunc("/projects", s.handleCreateProject).Methods("POST")
	api.HandleFunc("/projects/migrate", s.handleMigrateProjects).Methods("POST")
	api.HandleFunc("/projects/{id}", s.handleGetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods("PATCH")
	api.HandleFunc("/projects/{id}", s.handleDeleteProject).Methods("DELETE")

	// Reload both stores from storage.
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")

	// Apply (manifest document create-or-update)
	api.HandleFunc("/apply", s.handleApply).Methods("POST")

	// Change feed
	api.HandleFunc("/watch", s.handleWatch).Methods("GET")
}
