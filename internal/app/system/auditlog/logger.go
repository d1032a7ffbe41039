// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vendaops/contratohub/internal/app/store/audit"
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration. Each category routes to
// "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), or
// "off" (disabled).
type Config struct {
	// Auth controls authentication events (login, logout, password).
	Auth string
	// Admin controls administration events (user, role, goal changes).
	Admin string
	// Sync controls CRM synchronization run events.
	Sync string
}

// Logger writes audit events to MongoDB (via audit.Store) and to the
// structured log, as configured per category.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// clientIP extracts the client IP from the request.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("action", event.Action),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor_email", event.ActorEmail))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration. A nil logger is a
// no-op so tests can skip auditing entirely.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategorySync:
		setting = l.config.Sync
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("action", event.Action),
			)
		}
	}
}

func actorFields(p principal.Principal) (*primitive.ObjectID, string, string) {
	id := p.UserID
	return &id, p.Email, string(p.Role)
}

/* --- Authentication events --- */

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		Action:     audit.EventLoginSuccess,
		ActorID:    &userID,
		ActorEmail: email,
		IP:         clientIP(r),
		Success:    true,
	})
}

// LoginFailedUserNotFound logs a failed login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		Action:        audit.EventLoginFailedUserNotFound,
		ActorEmail:    attemptedEmail,
		IP:            clientIP(r),
		FailureReason: "user not found",
	})
}

// LoginFailedWrongPassword logs a failed login for a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		Action:        audit.EventLoginFailedWrongPassword,
		ActorID:       &userID,
		ActorEmail:    email,
		IP:            clientIP(r),
		FailureReason: "wrong password",
	})
}

// LoginFailedUserDisabled logs a login attempt on a disabled account.
func (l *Logger) LoginFailedUserDisabled(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		Action:        audit.EventLoginFailedUserDisabled,
		ActorID:       &userID,
		ActorEmail:    email,
		IP:            clientIP(r),
		FailureReason: "user disabled",
	})
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, p principal.Principal) {
	actorID, email, role := actorFields(p)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		Action:     audit.EventLogout,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		IP:         clientIP(r),
		Success:    true,
	})
}

// PasswordChanged logs a user changing their own password.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, p principal.Principal) {
	actorID, email, role := actorFields(p)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		Action:     audit.EventPasswordChanged,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		IP:         clientIP(r),
		Success:    true,
	})
}

/* --- Administration events --- */

// RoleChanged logs a role edit, recording old and new roles.
func (l *Logger) RoleChanged(ctx context.Context, r *http.Request, actor principal.Principal, targetID primitive.ObjectID, oldRole, newRole string) {
	actorID, email, role := actorFields(actor)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		Action:     audit.EventRoleChanged,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		TargetID:   &targetID,
		IP:         clientIP(r),
		Success:    true,
		Details:    map[string]string{"from": oldRole, "to": newRole},
	})
}

// StatusChanged logs a user enable/disable.
func (l *Logger) StatusChanged(ctx context.Context, r *http.Request, actor principal.Principal, targetID primitive.ObjectID, newStatus string) {
	action := audit.EventUserEnabled
	if newStatus == "disabled" {
		action = audit.EventUserDisabled
	}
	actorID, email, role := actorFields(actor)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		Action:     action,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		TargetID:   &targetID,
		IP:         clientIP(r),
		Success:    true,
	})
}

// UserCreated logs a new user record.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actor principal.Principal, targetID primitive.ObjectID, targetRole string) {
	actorID, email, role := actorFields(actor)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		Action:     audit.EventUserCreated,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		TargetID:   &targetID,
		IP:         clientIP(r),
		Success:    true,
		Details:    map[string]string{"role": targetRole},
	})
}

// GoalEvent logs a goal assignment, update, or deletion.
func (l *Logger) GoalEvent(ctx context.Context, r *http.Request, actor principal.Principal, action string, goalID, assigneeID primitive.ObjectID) {
	actorID, email, role := actorFields(actor)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		Action:     action,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		TargetID:   &goalID,
		IP:         clientIP(r),
		Success:    true,
		Details:    map[string]string{"assignee_id": assigneeID.Hex()},
	})
}

// ContractStatusChanged logs a manual contract status correction.
func (l *Logger) ContractStatusChanged(ctx context.Context, r *http.Request, actor principal.Principal, contractID primitive.ObjectID, oldStatus, newStatus string) {
	actorID, email, role := actorFields(actor)
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAdmin,
		Action:     audit.EventContractStatus,
		ActorID:    actorID,
		ActorEmail: email,
		ActorRole:  role,
		TargetID:   &contractID,
		IP:         clientIP(r),
		Success:    true,
		Details:    map[string]string{"from": oldStatus, "to": newStatus},
	})
}

/* --- Sync events --- */

// SyncStarted logs the beginning of a synchronization run.
func (l *Logger) SyncStarted(ctx context.Context, source, runID string) {
	l.Log(ctx, audit.Event{
		Category: audit.CategorySync,
		Action:   audit.EventSyncStarted,
		Success:  true,
		Details:  map[string]string{"source": source, "run_id": runID},
	})
}

// SyncRun logs the outcome of one synchronization run. runID correlates
// the audit trail with the structured logs of the same run.
func (l *Logger) SyncRun(ctx context.Context, source, runID string, created, updated, failed int, runErr error) {
	e := audit.Event{
		Category: audit.CategorySync,
		Action:   audit.EventSyncFinished,
		Success:  runErr == nil,
		Details: map[string]string{
			"source":  source,
			"run_id":  runID,
			"created": strconv.Itoa(created),
			"updated": strconv.Itoa(updated),
			"failed":  strconv.Itoa(failed),
		},
	}
	if runErr != nil {
		e.Action = audit.EventSyncFailed
		e.FailureReason = runErr.Error()
	}
	l.Log(ctx, e)
}
