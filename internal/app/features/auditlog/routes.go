// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/roles"
)

// Routes wires the audit trail endpoint, diretoria only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(roles.Diretoria))

		pr.Get("/", h.ServeList)
	})

	return r
}
