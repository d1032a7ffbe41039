// internal/app/features/contracts/routes.go
package contracts

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
)

// Routes mounts the contract endpoints (typically under "/contracts").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/filter-options", h.ServeFilterOptions)
		pr.Get("/export", h.ServeExport)
		pr.Put("/{id}/status", h.HandleUpdateStatus)
	})

	return r
}
