// internal/app/features/sync/handler.go
package sync

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/system/workers"
	"go.uber.org/zap"
)

// Handler triggers manual CRM pulls. Scheduling stays in the worker; this
// only exposes RunNow to the roles the router allows.
type Handler struct {
	Sync   *workers.ContractSync
	Log    *zap.Logger
	ErrLog *apierr.ErrorLogger
}

// NewHandler constructs a sync Handler around the shared worker.
func NewHandler(sync *workers.ContractSync, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Sync: sync, Log: logger, ErrLog: errLog}
}

func (h *Handler) runNow(w http.ResponseWriter, r *http.Request, source string) {
	res, err := h.Sync.RunNow(r.Context(), source)
	if err != nil {
		if errors.Is(err, workers.ErrSyncRunning) {
			apierr.Write(w, http.StatusConflict, "a sync run is already in progress")
			return
		}
		h.ErrLog.LogServerError(w, r, "sync: manual run failed", err, "sync run failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

// HandleWorkbank handles POST /sync/workbank.
func (h *Handler) HandleWorkbank(w http.ResponseWriter, r *http.Request) {
	h.runNow(w, r, "workbank")
}

// HandleCRM handles POST /sync/crm.
func (h *Handler) HandleCRM(w http.ResponseWriter, r *http.Request) {
	h.runNow(w, r, "crm")
}
