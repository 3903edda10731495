package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.HandleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Workflow invocation
		r.Post("/chat", h.HandleChat)
		r.Post("/extract", h.HandleExtract)

		// Encounter registry
		r.Get("/encounters", h.ListEncounters)
		r.Post("/encounters", h.CreateEncounter)
		r.Get("/encounters/{id}", h.GetEncounter)
		r.Delete("/encounters/{id}", h.DeleteEncounter)
		r.Get("/encounters/{id}/messages", h.ListEncounterMessages)
	})

	if h.Hub != nil {
		r.Get("/ws", h.Hub.HandleWS)
	}
}
