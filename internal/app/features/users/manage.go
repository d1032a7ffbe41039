// internal/app/features/users/manage.go
package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/policy/userpolicy"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/authutil"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createUserRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	City     string `json:"city"`
	State    string `json:"state"`
	Region   string `json:"region"`
}

// HandleCreate handles POST /users.
//
// The actor must be allowed to hand out the new account's role at the new
// account's locality, the same rule that governs role edits.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}
	if req.Nome == "" || req.Email == "" {
		apierr.BadRequest(w, "nome and email are required")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}
	role, err := roles.Parse(req.Role)
	if err != nil {
		apierr.BadRequest(w, "unknown role")
		return
	}

	// The account being created "holds" the requested role for the
	// authority check, so the downward-only rule applies to it too.
	prospective := models.User{Role: string(role), City: req.City, State: req.State, Region: req.Region}
	if !userpolicy.CanEditRole(p, prospective, role) {
		apierr.Forbidden(w)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: password hash failed", err, "could not create user")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user create")
	defer cancel()

	created, err := userstore.New(h.DB).Create(ctx, models.User{
		Nome:         req.Nome,
		Email:        req.Email,
		Role:         string(role),
		City:         req.City,
		State:        req.State,
		Region:       req.Region,
		PasswordHash: hash,
	})
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			apierr.Write(w, http.StatusConflict, "a user with this email already exists")
		case errors.Is(err, userstore.ErrLocalityNeeded):
			apierr.BadRequest(w, err.Error())
		default:
			h.ErrLog.LogServerError(w, r, "users: create failed", err, "could not create user")
		}
		return
	}

	h.AuditLog.UserCreated(ctx, r, p, created.ID, created.Role)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

// loadTarget fetches the user named by the {id} route parameter, answering
// the request itself on failure.
func (h *Handler) loadTarget(w http.ResponseWriter, r *http.Request) *models.User {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.BadRequest(w, "invalid user id")
		return nil
	}
	target, err := userstore.New(h.DB).GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.NotFound(w, "user not found")
			return nil
		}
		h.ErrLog.LogServerError(w, r, "users: lookup failed", err, "could not load user")
		return nil
	}
	return target
}

// HandleUpdateRole handles PUT /users/{id}/role.
//
// The store bumps the target's token epoch so identity tokens issued under
// the old role stop verifying immediately.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}
	newRole, err := roles.Parse(req.Role)
	if err != nil {
		apierr.BadRequest(w, "unknown role")
		return
	}

	target := h.loadTarget(w, r)
	if target == nil {
		return
	}
	if !userpolicy.CanEditRole(p, *target, newRole) {
		apierr.Forbidden(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user role update")
	defer cancel()

	if err := userstore.New(h.DB).UpdateRole(ctx, target.ID, newRole); err != nil {
		h.ErrLog.LogServerError(w, r, "users: role update failed", err, "could not update role")
		return
	}

	h.AuditLog.RoleChanged(ctx, r, p, target.ID, target.Role, string(newRole))

	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateStatus handles PUT /users/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}

	target := h.loadTarget(w, r)
	if target == nil {
		return
	}
	if !userpolicy.CanEditStatus(p, *target) {
		apierr.Forbidden(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user status update")
	defer cancel()

	if err := userstore.New(h.DB).UpdateStatus(ctx, target.ID, req.Status); err != nil {
		if errors.Is(err, userstore.ErrBadStatus) {
			apierr.BadRequest(w, err.Error())
			return
		}
		h.ErrLog.LogServerError(w, r, "users: status update failed", err, "could not update status")
		return
	}

	h.AuditLog.StatusChanged(ctx, r, p, target.ID, req.Status)

	w.WriteHeader(http.StatusNoContent)
}
