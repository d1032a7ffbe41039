// internal/app/features/contracts/status.go
package contracts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/policy/contractpolicy"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus handles PUT /contracts/{id}/status, the manual
// correction path for contracts whose feed carries the wrong lifecycle
// state. A contract outside the caller's scope answers 404, same as a
// missing one.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.BadRequest(w, "invalid contract id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contract status update")
	defer cancel()

	store := contractstore.New(h.DB)
	c, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractstore.ErrNotFound) {
			apierr.NotFound(w, "contract not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "contracts: lookup failed", err, "could not update contract")
		return
	}

	if !contractpolicy.CanView(p, *c) {
		apierr.NotFound(w, "contract not found")
		return
	}
	if !contractpolicy.CanEditStatus(p, *c) {
		apierr.Forbidden(w)
		return
	}

	if err := store.UpdateStatus(ctx, c.ID, req.Status); err != nil {
		switch {
		case errors.Is(err, contractstore.ErrBadStatus):
			apierr.BadRequest(w, err.Error())
		case errors.Is(err, contractstore.ErrNotFound):
			apierr.NotFound(w, "contract not found")
		default:
			h.ErrLog.LogServerError(w, r, "contracts: status update failed", err, "could not update contract")
		}
		return
	}

	h.AuditLog.ContractStatusChanged(ctx, r, p, c.ID, c.Status, req.Status)
	w.WriteHeader(http.StatusNoContent)
}
