// internal/app/features/notifications/handler.go
package notifications

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	notificationstore "github.com/vendaops/contratohub/internal/app/store/notifications"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// listLimit caps how many notifications the bell dropdown pulls at once.
const listLimit = 50

// Handler serves the signed-in user's own notifications. There is no
// cross-user access here at all; every query is keyed by the principal.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierr.ErrorLogger
}

// NewHandler constructs a notifications Handler.
func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

// ServeList handles GET /notifications.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notification list")
	defer cancel()

	notes, err := notificationstore.New(h.DB).ListForUser(ctx, p.UserID, listLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "notifications: list failed", err, "could not load notifications")
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"notifications": notes})
}

// ServeUnreadCount handles GET /notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notification unread count")
	defer cancel()

	n, err := notificationstore.New(h.DB).UnreadCount(ctx, p.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "notifications: unread count failed", err, "could not load notifications")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"unread": n})
}

// HandleMarkRead handles POST /notifications/{id}/read.
//
// The store matches on both the notification id and the principal, so a
// notification belonging to someone else answers 404.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.BadRequest(w, "invalid notification id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notification mark read")
	defer cancel()

	if err := notificationstore.New(h.DB).MarkRead(ctx, id, p.UserID); err != nil {
		if errors.Is(err, notificationstore.ErrNotFound) {
			apierr.NotFound(w, "notification not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "notifications: mark read failed", err, "could not update notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkAllRead handles POST /notifications/mark-all-read.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "notification mark all read")
	defer cancel()

	n, err := notificationstore.New(h.DB).MarkAllRead(ctx, p.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "notifications: mark all read failed", err, "could not update notifications")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"marked": n})
}
