// internal/app/features/contracts/export.go
package contracts

import (
	"net/http"

	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/shared/contractfilters"
	"github.com/vendaops/contratohub/internal/app/policy/contractpolicy"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/csvutil"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ServeExport handles GET /contracts/export.
//
// Streams the caller's scoped contracts as a CSV download under the same
// display filters as the listing. The export is capped at
// csvutil.MaxExportRows rows, newest first.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "contract export")
	defer cancel()

	pred := contractpolicy.ReadScope(p)
	filters := contractfilters.Parse(r)

	find := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(csvutil.MaxExportRows))

	rows, err := contractstore.New(h.DB).Find(ctx, pred, filters, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "contracts: export query failed", err, "could not export contracts")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contratos.csv"`)

	if err := csvutil.WriteContracts(w, rows); err != nil {
		// Headers are gone at this point; log and drop the connection.
		h.Log.Error("contracts: csv write failed", zap.Error(err))
	}
}
