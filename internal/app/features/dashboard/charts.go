// internal/app/features/dashboard/charts.go
package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/shared/contractfilters"
	"github.com/vendaops/contratohub/internal/app/policy/contractpolicy"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
)

const defaultRankingSize = 10

// ServeProduction handles GET /dashboard/production.
//
// Returns the monthly production series for active contracts inside the
// caller's scope, oldest month first:
//
//	{ "months": [ {"month":"2026-07","value":84000,"count":5}, … ] }
func (h *Handler) ServeProduction(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard production")
	defer cancel()

	pred := contractpolicy.ReadScope(p)
	filters := contractfilters.Parse(r)

	points, err := contractstore.New(h.DB).MonthlyProduction(ctx, pred, filters)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: monthly production aggregation failed", err, "could not load production chart")
		return
	}
	if points == nil {
		points = []contractstore.MonthlyPoint{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"months": points})
}

// ServeDistribution handles GET /dashboard/distribution?by=<dimension>.
//
// Groups the caller's scoped contracts by the requested dimension (status
// by default) for market-share style charts:
//
//	{ "dimension": "status", "groups": [ {"label":"pago","count":7,"value":98000}, … ] }
func (h *Handler) ServeDistribution(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	dimension := query.Get(r, "by")
	if dimension == "" {
		dimension = "status"
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard distribution")
	defer cancel()

	pred := contractpolicy.ReadScope(p)
	filters := contractfilters.Parse(r)

	groups, err := contractstore.New(h.DB).CountsBy(ctx, pred, filters, dimension)
	if err != nil {
		if errors.Is(err, contractstore.ErrBadDimension) {
			apierr.BadRequest(w, "unknown grouping dimension")
			return
		}
		h.ErrLog.LogServerError(w, r, "dashboard: distribution aggregation failed", err, "could not load distribution chart")
		return
	}
	if groups == nil {
		groups = []contractstore.DimensionCount{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"dimension": dimension,
		"groups":    groups,
	})
}

// ServeRanking handles GET /dashboard/ranking?limit=N.
//
// Ranks promoters by active contract value inside the caller's scope:
//
//	{ "ranking": [ {"promotora":"Beta","total_value":50000,"contracts":3}, … ] }
func (h *Handler) ServeRanking(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	limit := defaultRankingSize
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			apierr.BadRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "dashboard ranking")
	defer cancel()

	pred := contractpolicy.ReadScope(p)
	filters := contractfilters.Parse(r)

	ranking, err := contractstore.New(h.DB).PromoterRanking(ctx, pred, filters, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: promoter ranking aggregation failed", err, "could not load promoter ranking")
		return
	}
	if ranking == nil {
		ranking = []contractstore.RankedPromoter{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ranking": ranking})
}
