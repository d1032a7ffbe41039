// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"github.com/vendaops/contratohub/internal/app/store/audit"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	goalstore "github.com/vendaops/contratohub/internal/app/store/goals"
	userstore "github.com/vendaops/contratohub/internal/app/store/users"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"github.com/vendaops/contratohub/internal/app/system/crm"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/workers"
	"go.uber.org/zap"
)

// syncWorker is shared between Startup (which builds and starts it),
// BuildHandler (which mounts the manual trigger endpoints), and Shutdown.
var syncWorker *workers.ContractSync

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
//
// It promotes the bootstrap diretoria account and builds the contract
// sync worker from the configured CRM feeds.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.BootstrapDiretoriaEmail != "" {
		if err := ensureDiretoria(ctx, appCfg.BootstrapDiretoriaEmail, deps, logger); err != nil {
			return err
		}
	}

	var sources []crm.Source
	if appCfg.WorkbankAPIURL != "" {
		sources = append(sources, crm.NewWorkbank(crm.WorkbankConfig{
			BaseURL:      appCfg.WorkbankAPIURL,
			TokenURL:     appCfg.WorkbankTokenURL,
			ClientID:     appCfg.WorkbankClientID,
			ClientSecret: appCfg.WorkbankClientSecret,
		}))
	}
	if appCfg.CRMAPIURL != "" {
		sources = append(sources, crm.NewInternal(crm.InternalConfig{
			BaseURL: appCfg.CRMAPIURL,
			APIKey:  appCfg.CRMAPIKey,
		}))
	}

	auditLogger := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
		Sync:  appCfg.AuditLogSync,
	})

	syncWorker = workers.NewContractSync(
		sources,
		userstore.New(deps.MongoDatabase),
		contractstore.New(deps.MongoDatabase),
		goalstore.New(deps.MongoDatabase),
		auditLogger,
		logger,
		appCfg.SyncInterval,
	)

	if appCfg.SyncEnabled && len(sources) > 0 {
		syncWorker.Start()
	} else {
		logger.Info("automatic contract sync disabled",
			zap.Bool("sync_enabled", appCfg.SyncEnabled),
			zap.Int("sources", len(sources)))
	}

	return nil
}

// ensureDiretoria promotes the configured account so a fresh deployment
// always has an administrator. The account must already exist; accounts
// are never created from configuration.
func ensureDiretoria(ctx context.Context, email string, deps DBDeps, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)
	u, err := store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			logger.Warn("bootstrap diretoria account not found; create it and restart",
				zap.String("email", email))
			return nil
		}
		return err
	}
	if u.Role == string(roles.Diretoria) {
		return nil
	}
	if err := store.UpdateRole(ctx, u.ID, roles.Diretoria); err != nil {
		return err
	}
	logger.Info("promoted bootstrap diretoria account",
		zap.String("email", email),
		zap.String("previous_role", u.Role))
	return nil
}
