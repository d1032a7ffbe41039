// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
)

// Routes wires the user administration endpoints. Listing and edit
// authority are enforced per request by userpolicy, so the router only
// requires a signed-in principal.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeDetail)
		pr.Put("/{id}/role", h.HandleUpdateRole)
		pr.Put("/{id}/status", h.HandleUpdateStatus)
	})

	return r
}
