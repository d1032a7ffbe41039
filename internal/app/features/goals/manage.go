// internal/app/features/goals/manage.go
package goals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/policy/goalpolicy"
	"github.com/vendaops/contratohub/internal/app/store/audit"
	goalstore "github.com/vendaops/contratohub/internal/app/store/goals"
	notificationstore "github.com/vendaops/contratohub/internal/app/store/notifications"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	UserID      string  `json:"user_id"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Target      float64 `json:"target"`
	Period      string  `json:"period"`
}

func validGoalType(t string) bool {
	return t == models.GoalTypeValue || t == models.GoalTypeCount
}

// HandleCreate handles POST /goals.
//
// The assignee must be inside the caller's assignment authority
// (goalpolicy.CanAssign). On success the assignee gets an in-app
// notification and the assignment is audited.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}

	assigneeID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		apierr.BadRequest(w, "invalid user_id")
		return
	}
	if !validGoalType(req.Type) {
		apierr.BadRequest(w, "type must be value or count")
		return
	}
	if req.Target <= 0 {
		apierr.BadRequest(w, "target must be positive")
		return
	}
	if _, err := time.Parse("2006-01", req.Period); err != nil {
		apierr.BadRequest(w, "period must look like 2026-09")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "goal create")
	defer cancel()

	assignee, err := userstore.New(h.DB).GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.NotFound(w, "user not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "goals: assignee lookup failed", err, "could not create goal")
		return
	}

	if !goalpolicy.CanAssign(p, *assignee) {
		apierr.Forbidden(w)
		return
	}

	goal, err := goalstore.New(h.DB).Create(ctx, models.Goal{
		UserID:      assignee.ID,
		Description: req.Description,
		Type:        req.Type,
		Target:      req.Target,
		Period:      req.Period,
	}, *assignee)
	if err != nil {
		if errors.Is(err, goalstore.ErrDuplicateGoal) {
			apierr.Write(w, http.StatusConflict, "the user already has a goal of this type for this period")
			return
		}
		h.ErrLog.LogServerError(w, r, "goals: create failed", err, "could not create goal")
		return
	}

	// Notification failure doesn't undo the assignment; the goal shows up
	// on the assignee's dashboard regardless.
	msg := fmt.Sprintf("Nova meta para %s: %s", goal.Period, goal.Description)
	if _, err := notificationstore.New(h.DB).Create(ctx, assignee.ID, msg, "/goals"); err != nil {
		h.Log.Warn("goals: notification create failed", zap.Error(err))
	}

	h.AuditLog.GoalEvent(ctx, r, p, audit.EventGoalAssigned, goal.ID, assignee.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(goal)
}

type updateRequest struct {
	Description string  `json:"description"`
	Target      float64 `json:"target"`
}

// loadGoalForWrite fetches the goal and checks the caller's authority over
// its assignee. Authority over the assignee implies authority over their
// goals; a goal whose assignee record no longer exists cannot be edited.
func (h *Handler) loadGoalForWrite(ctx context.Context, w http.ResponseWriter, r *http.Request, p principal.Principal) *models.Goal {
	goalID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.BadRequest(w, "invalid goal id")
		return nil
	}

	goal, err := goalstore.New(h.DB).GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, goalstore.ErrNotFound) {
			apierr.NotFound(w, "goal not found")
			return nil
		}
		h.ErrLog.LogServerError(w, r, "goals: lookup failed", err, "could not load goal")
		return nil
	}

	assignee, err := userstore.New(h.DB).GetByID(ctx, goal.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.Forbidden(w)
			return nil
		}
		h.ErrLog.LogServerError(w, r, "goals: assignee lookup failed", err, "could not load goal")
		return nil
	}

	if !goalpolicy.CanEdit(p, *assignee) {
		apierr.Forbidden(w)
		return nil
	}
	return goal
}

// HandleUpdate handles PUT /goals/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}
	if req.Target <= 0 {
		apierr.BadRequest(w, "target must be positive")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "goal update")
	defer cancel()

	goal := h.loadGoalForWrite(ctx, w, r, p)
	if goal == nil {
		return
	}

	store := goalstore.New(h.DB)
	if err := store.UpdateGoal(ctx, goal.ID, goalstore.Update{
		Description: req.Description,
		Target:      req.Target,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "goals: update failed", err, "could not update goal")
		return
	}

	h.AuditLog.GoalEvent(ctx, r, p, audit.EventGoalUpdated, goal.ID, goal.UserID)

	updated, err := store.GetByID(ctx, goal.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "goals: reload failed", err, "could not update goal")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)
}

// HandleDelete handles DELETE /goals/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "goal delete")
	defer cancel()

	goal := h.loadGoalForWrite(ctx, w, r, p)
	if goal == nil {
		return
	}

	if err := goalstore.New(h.DB).Delete(ctx, goal.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "goals: delete failed", err, "could not delete goal")
		return
	}

	h.AuditLog.GoalEvent(ctx, r, p, audit.EventGoalDeleted, goal.ID, goal.UserID)

	w.WriteHeader(http.StatusNoContent)
}
