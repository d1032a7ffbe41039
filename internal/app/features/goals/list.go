// internal/app/features/goals/list.go
package goals

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/policy/goalpolicy"
	goalstore "github.com/vendaops/contratohub/internal/app/store/goals"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
)

// ServeList handles GET /goals.
//
// Lists goals inside the caller's locality scope, optionally narrowed to
// one period (?period=2026-09). Progress (current vs target) comes back
// with each goal.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "goal list")
	defer cancel()

	pred := goalpolicy.ReadScope(p)
	period := query.Get(r, "period")

	rows, err := goalstore.New(h.DB).Find(ctx, pred, period, nil)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "goals: find failed", err, "could not load goals")
		return
	}
	if rows == nil {
		rows = []models.Goal{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"goals": rows})
}

// assignableUser is the trimmed user view returned to the assignment form.
type assignableUser struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Role  string `json:"role"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// ServeAssignableUsers handles GET /goals/assignable-users.
//
// Returns the active users the caller may assign goals to: the roles one
// level down, inside the caller's locality. When that set comes up empty
// and the caller's role carries self-assignment, the caller themselves is
// the sole target.
func (h *Handler) ServeAssignableUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "goal assignable users")
	defer cancel()

	rs := goalpolicy.AssignableRoles(p)
	out := []assignableUser{}

	if len(rs) > 0 {
		rows, err := userstore.New(h.DB).Assignable(ctx, rs, scope.UserLocality(p))
		if err != nil {
			h.ErrLog.LogServerError(w, r, "goals: assignable users query failed", err, "could not load users")
			return
		}
		for _, u := range rows {
			out = append(out, assignableUser{
				ID:    u.ID.Hex(),
				Nome:  u.Nome,
				Role:  u.Role,
				City:  u.City,
				State: u.State,
			})
		}
	}

	if len(out) == 0 && roles.CanSelfAssign(p.Role) {
		out = append(out, assignableUser{
			ID:    p.UserID.Hex(),
			Nome:  p.Nome,
			Role:  string(p.Role),
			City:  p.City,
			State: p.State,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"users": out})
}
