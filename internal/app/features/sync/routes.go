// internal/app/features/sync/routes.go
package sync

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/roles"
)

// Routes wires the manual sync triggers. The workbank feed is diretoria
// only; the internal CRM feed is also open to superintendencia.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(roles.Diretoria))

		pr.Post("/workbank", h.HandleWorkbank)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(roles.Diretoria, roles.Superintendencia))

		pr.Post("/crm", h.HandleCRM)
	})

	return r
}
