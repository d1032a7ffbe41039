// internal/app/features/login/handler.go
package login

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vendaops/contratohub/internal/app/features/apierr"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/authutil"
	"github.com/vendaops/contratohub/internal/app/system/ratelimit"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/timeouts"
	"github.com/vendaops/contratohub/internal/app/system/token"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loginAttemptLimit bounds password attempts per client IP per window.
const (
	loginAttemptLimit  = 10
	loginAttemptWindow = time.Minute
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Tokens     *token.Manager
	ErrLog     *apierr.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.Limiter
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, tokens *token.Manager, errLog *apierr.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		Tokens:     tokens,
		ErrLog:     errLog,
		AuditLog:   audit,
		Limiter:    ratelimit.New(loginAttemptLimit, loginAttemptWindow),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userView struct {
	ID     string `json:"id"`
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Region string `json:"region,omitempty"`
}

// HandleLogin handles POST /login.
//
// Every rejection path answers 401 with the same message so the response
// does not reveal whether the email exists or the account is disabled.
// The audit log records which case actually happened.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		apierr.Write(w, http.StatusTooManyRequests, "too many login attempts, try again soon")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		apierr.BadRequest(w, "email and password are required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	usrStore := userstore.New(h.DB)
	u, err := usrStore.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Email)
			apierr.Write(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.ErrLog.LogServerError(w, r, "login: user lookup failed", err, "login failed")
		return
	}

	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		apierr.Write(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if u.Status == "disabled" {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID, u.Email)
		apierr.Write(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	role, err := roles.Parse(u.Role)
	if err != nil {
		// A record with a role outside the registry authenticates nobody.
		h.Log.Error("login: user has unknown role", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
		apierr.Write(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tok, err := h.Tokens.Issue(u.ID.Hex(), u.Email, role, u.TokenEpoch)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login: token issue failed", err, "login failed")
		return
	}

	if err := h.SessionMgr.SetSession(w, r, tok); err != nil {
		h.ErrLog.LogServerError(w, r, "login: session save failed", err, "login failed")
		return
	}

	h.Limiter.Reset(ip)
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		Token: tok,
		User: userView{
			ID:     u.ID.Hex(),
			Nome:   u.Nome,
			Email:  u.Email,
			Role:   u.Role,
			City:   u.City,
			State:  u.State,
			Region: u.Region,
		},
	})
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "logout")
	defer cancel()

	h.AuditLog.Logout(ctx, r, p)

	if err := h.SessionMgr.ClearSession(w, r); err != nil {
		h.Log.Warn("logout: clear session failed", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles POST /login/password for the signed-in user.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		apierr.Unauthorized(w)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, "invalid request body")
		return
	}

	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "change password")
	defer cancel()

	usrStore := userstore.New(h.DB)
	u, err := usrStore.GetByID(ctx, p.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "change password: user lookup failed", err, "password change failed")
		return
	}

	if !authutil.CheckPassword(req.CurrentPassword, u.PasswordHash) {
		apierr.Write(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "change password: hash failed", err, "password change failed")
		return
	}
	if err := usrStore.SetPassword(ctx, u.ID, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "change password: update failed", err, "password change failed")
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, p)

	w.WriteHeader(http.StatusNoContent)
}
