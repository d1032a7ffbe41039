// internal/app/features/login/routes.go
package login

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
)

// Routes mounts the authentication endpoints. Login is public; logout and
// password change require a signed-in principal.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.HandleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/logout", h.HandleLogout)
		pr.Post("/login/password", h.HandleChangePassword)
	})

	return r
}
