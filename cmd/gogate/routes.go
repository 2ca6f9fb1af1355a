package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/MrEthical07/goGate/middleware"
	"github.com/MrEthical07/goGate/users"
)

func newRouter(gate *goGate.Gate, repo *users.MemoryRepository, metrics bool) http.Handler {
	r := chi.NewRouter()
	r.NotFound(middleware.NotFound)

	if metrics {
		r.Handle("/metrics", prometheus.NewCollector(gate).Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Guard(gate))

		r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
		})
		r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]int{"users": repo.Len()})
		})
		r.Get("/unauthorized", middleware.Unauthorized)
		r.Get("/forbidden", middleware.Forbidden)
		r.Get("/users/me", func(w http.ResponseWriter, r *http.Request) {
			user, ok := goGate.UserFromContext(r.Context())
			if !ok {
				middleware.NotFound(w, r)
				return
			}
			writeJSON(w, http.StatusOK, user)
		})
		r.Post("/auth_session/login", middleware.LoginHandler(gate))
		r.Delete("/auth_session/logout", middleware.LogoutHandler(gate))
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
