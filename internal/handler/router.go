package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the board routes. metrics may be nil.
func NewRouter(h *BoardHandler, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.Board)
		r.Post("/", h.CreateProject)
		r.Delete("/", h.Reset)
		r.Get("/active", h.ActiveProject)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProject)
			r.Put("/", h.UpdateProject)
			r.Delete("/", h.DeleteProject)
			r.Post("/activate", h.ActivateProject)
			r.Post("/sort", h.SortTasks)

			r.Post("/tasks", h.AddTask)
			r.Route("/tasks/{taskID}", func(r chi.Router) {
				r.Get("/", h.GetTask)
				r.Patch("/", h.UpdateTask)
				r.Delete("/", h.RemoveTask)
				r.Post("/status", h.ChangeStatus)
				r.Post("/priority", h.ChangePriority)
				r.Post("/due", h.ChangeDueDate)
			})
		})
	})
	return r
}
