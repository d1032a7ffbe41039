// internal/app/features/contracts/list.go
package contracts

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/shared/contractfilters"
	"github.com/vendaops/contratohub/internal/app/policy/contractpolicy"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/paging"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listResponse is the JSON shape of the contract listing.
type listResponse struct {
	Contracts  []models.Contract `json:"contracts"`
	Total      int64             `json:"total"`
	HasPrev    bool              `json:"has_prev"`
	HasNext    bool              `json:"has_next"`
	PrevCursor string            `json:"prev_cursor,omitempty"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ServeList handles GET /contracts.
//
// The listing is newest first and keyset-paged via before/after cursors.
// Display filters (status, promotora, dates, …) narrow the caller's scope;
// they can never widen it.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contract list")
	defer cancel()

	pred := contractpolicy.ReadScope(p)
	filters := contractfilters.Parse(r)
	after := query.Get(r, "after")
	before := query.Get(r, "before")

	store := contractstore.New(h.DB)

	total, err := store.Count(ctx, pred, filters)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "contracts: count failed", err, "could not load contracts")
		return
	}

	cfg := paging.ConfigureKeysetDesc(before, after)
	find := options.Find()
	cfg.ApplyToFind(find, "date")

	rows, err := store.FindPage(ctx, pred, filters, cfg.TimeKeysetWindow("date"), find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "contracts: find failed", err, "could not load contracts")
		return
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	res := paging.TrimPage(&rows, before, after)

	prev, next := paging.BuildCursors(rows,
		func(c models.Contract) string { return paging.TimeKey(c.Date) },
		func(c models.Contract) primitive.ObjectID { return c.ID },
	)

	if rows == nil {
		rows = []models.Contract{}
	}

	resp := listResponse{
		Contracts: rows,
		Total:     total,
		HasPrev:   res.HasPrev,
		HasNext:   res.HasNext,
	}
	if res.HasPrev {
		resp.PrevCursor = prev
	}
	if res.HasNext {
		resp.NextCursor = next
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ServeFilterOptions handles GET /contracts/filter-options.
//
// Returns the distinct filter values present inside the caller's scope so
// dropdowns never offer a value the caller could not match. A deny-all
// scope yields empty lists, not an error.
func (h *Handler) ServeFilterOptions(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contract filter options")
	defer cancel()

	pred := contractpolicy.ReadScope(p)

	opts, err := contractstore.New(h.DB).DistinctOptions(ctx, pred)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "contracts: distinct options failed", err, "could not load filter options")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(opts)
}
