// internal/app/features/auditlog/list.go
package auditlog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/store/audit"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const pageSize = 50

type listResponse struct {
	Events     []audit.Event `json:"events"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int64         `json:"total_pages"`
}

// ServeList handles GET /audit.
//
// Filter parameters: category, action, actor_id, failed, start_date and
// end_date (YYYY-MM-DD, end date inclusive), page. Unparseable dates are
// ignored; a bad actor_id is a client error.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category: query.Get(r, "category"),
		Action:   query.Get(r, "action"),
		Failed:   query.Get(r, "failed") == "true",
		Limit:    pageSize,
		Offset:   int64((page - 1) * pageSize),
	}

	if s := query.Get(r, "actor_id"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			apierr.BadRequest(w, "invalid actor_id")
			return
		}
		filter.ActorID = &id
	}
	if s := query.Get(r, "start_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.StartTime = &t
		}
	}
	if s := query.Get(r, "end_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndTime = &endOfDay
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	store := audit.New(h.DB)
	events, err := store.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit: query failed", err, "could not load audit events")
		return
	}
	total, err := store.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit: count failed", err, "could not load audit events")
		return
	}

	if events == nil {
		events = []audit.Event{}
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listResponse{
		Events:     events,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}
