// internal/app/features/users/detail.go
package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/shared/contractfilters"
	"github.com/vendaops/contratohub/internal/app/policy/contractpolicy"
	"github.com/vendaops/contratohub/internal/app/policy/userpolicy"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type detailResponse struct {
	User models.User        `json:"user"`
	KPIs contractstore.KPIs `json:"kpis"`
}

// ServeDetail handles GET /users/{id}.
//
// Returns the user record together with the production numbers of the
// contracts they own. A user outside the caller's view scope answers 404,
// the same as a user that does not exist.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user detail")
	defer cancel()

	target, err := userstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.NotFound(w, "user not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "users: lookup failed", err, "could not load user")
		return
	}
	if !userpolicy.CanView(p, *target) {
		apierr.NotFound(w, "user not found")
		return
	}

	// The caller's own contract scope, narrowed to this owner. Conjoining
	// keeps the numbers inside what the caller could see on the dashboard.
	pred := scope.And(contractpolicy.ReadScope(p), scope.Eq("user_id", target.ID))
	kpis, err := contractstore.New(h.DB).FetchKPIs(ctx, pred, contractfilters.Parse(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: kpi aggregation failed", err, "could not load user")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detailResponse{User: *target, KPIs: kpis})
}
