// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
)

// Routes wires the notification endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/unread-count", h.ServeUnreadCount)
		pr.Post("/{id}/read", h.HandleMarkRead)
		pr.Post("/mark-all-read", h.HandleMarkAllRead)
	})

	return r
}
