// internal/app/features/goals/routes.go
package goals

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
)

// Routes wires the goal endpoints. All of them require a signed-in
// principal; per-goal authority is enforced in the handlers via goalpolicy.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/assignable-users", h.ServeAssignableUsers)
	})

	return r
}
