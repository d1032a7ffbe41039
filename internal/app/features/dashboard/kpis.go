// internal/app/features/dashboard/kpis.go
package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/shared/contractfilters"
	"github.com/vendaops/contratohub/internal/app/policy/contractpolicy"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
)

// ServeKPIs handles GET /dashboard/kpis.
//
// Response:
//
//	{ "total_contracts": 12, "active_contracts": 10,
//	  "total_value": 154000.50, "average_ticket": 15400.05 }
func (h *Handler) ServeKPIs(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard kpis")
	defer cancel()

	pred := contractpolicy.ReadScope(p)
	filters := contractfilters.Parse(r)

	kpis, err := contractstore.New(h.DB).FetchKPIs(ctx, pred, filters)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: kpi aggregation failed", err, "could not load dashboard metrics")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(kpis)
}
