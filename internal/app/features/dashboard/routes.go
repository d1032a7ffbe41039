// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/system/auth"
)

// Routes mounts the dashboard endpoints (typically under "/dashboard").
// All of them require a signed-in principal; scope narrowing happens in
// the handlers, not here.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/kpis", h.ServeKPIs)
		pr.Get("/production", h.ServeProduction)
		pr.Get("/distribution", h.ServeDistribution)
		pr.Get("/ranking", h.ServeRanking)
	})

	return r
}
