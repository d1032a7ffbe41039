// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	auditlogfeature "github.com/vendaops/contratohub/internal/app/features/auditlog"
	contractsfeature "github.com/vendaops/contratohub/internal/app/features/contracts"
	dashboardfeature "github.com/vendaops/contratohub/internal/app/features/dashboard"
	goalsfeature "github.com/vendaops/contratohub/internal/app/features/goals"
	healthfeature "github.com/vendaops/contratohub/internal/app/features/health"
	loginfeature "github.com/vendaops/contratohub/internal/app/features/login"
	notificationsfeature "github.com/vendaops/contratohub/internal/app/features/notifications"
	syncfeature "github.com/vendaops/contratohub/internal/app/features/sync"
	usersfeature "github.com/vendaops/contratohub/internal/app/features/users"
	"github.com/vendaops/contratohub/internal/app/store/audit"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/token"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. Every endpoint except the health
// check and login speaks JSON behind the session middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := token.NewManager(appCfg.TokenSecret, appCfg.TokenTTL)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(tokens, appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// The fetcher re-reads the user on each request so role changes,
	// disabled accounts, and token epoch bumps take effect immediately.
	sessionMgr.SetFetcher(userstore.New(deps.MongoDatabase))

	errLog := apierr.NewErrorLogger(logger)

	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
		Sync:  appCfg.AuditLogSync,
	})

	r := chi.NewRouter()

	// Loads the principal into context when a valid session is present.
	r.Use(sessionMgr.LoadPrincipal)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, tokens, errLog, auditLogger, logger)
	r.Mount("/", loginfeature.Routes(loginHandler, sessionMgr))

	// Role-scoped dashboard aggregates
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Contract listing and CSV export
	contractsHandler := contractsfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/contracts", contractsfeature.Routes(contractsHandler, sessionMgr))

	// Goal assignment and tracking
	goalsHandler := goalsfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/goals", goalsfeature.Routes(goalsHandler, sessionMgr))

	// User administration
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	// In-app notifications
	notificationsHandler := notificationsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// Audit trail, diretoria only
	auditHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	// Manual CRM pulls
	syncHandler := syncfeature.NewHandler(syncWorker, errLog, logger)
	r.Mount("/sync", syncfeature.Routes(syncHandler, sessionMgr))

	return r, nil
}
