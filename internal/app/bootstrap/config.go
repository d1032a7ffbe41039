// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ContratoHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CONTRATOHUB_MONGO_URI, CONTRATOHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "contratohub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "contratohub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "token_secret", Default: "dev-only-token-secret-0123456789ABCDEF", Desc: "Identity token signing secret (min 32 bytes)"},
	{Name: "token_ttl", Default: "12h", Desc: "Identity token lifetime (e.g. 12h, 30m)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_sync", Default: "all", Desc: "Sync event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Workbank feed (OAuth2 client credentials)
	{Name: "workbank_api_url", Default: "", Desc: "Workbank API base URL (blank disables the feed)"},
	{Name: "workbank_client_id", Default: "", Desc: "Workbank OAuth2 client ID"},
	{Name: "workbank_client_secret", Default: "", Desc: "Workbank OAuth2 client secret"},
	{Name: "workbank_token_url", Default: "", Desc: "Workbank OAuth2 token endpoint"},

	// Internal CRM feed (static API key)
	{Name: "crm_api_url", Default: "", Desc: "Internal CRM base URL (blank disables the feed)"},
	{Name: "crm_api_key", Default: "", Desc: "Internal CRM API key"},

	// Contract sync scheduling
	{Name: "sync_interval", Default: "15m", Desc: "How often the automatic contract pull runs"},
	{Name: "sync_enabled", Default: true, Desc: "Run the automatic contract pull loop"},

	// Diretoria bootstrap
	{Name: "bootstrap_diretoria_email", Default: "", Desc: "Email of the account promoted to diretoria on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config
// yaml/json/toml files, environment variables (WAFFLE_* for core,
// CONTRATOHUB_* for app), and command-line flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CONTRATOHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", 12*time.Hour),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
		AuditLogSync:  appValues.String("audit_log_sync"),

		WorkbankAPIURL:       appValues.String("workbank_api_url"),
		WorkbankClientID:     appValues.String("workbank_client_id"),
		WorkbankClientSecret: appValues.String("workbank_client_secret"),
		WorkbankTokenURL:     appValues.String("workbank_token_url"),

		CRMAPIURL: appValues.String("crm_api_url"),
		CRMAPIKey: appValues.String("crm_api_key"),

		SyncInterval: appValues.Duration("sync_interval", 15*time.Minute),
		SyncEnabled:  appValues.Bool("sync_enabled"),

		BootstrapDiretoriaEmail: appValues.String("bootstrap_diretoria_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Catches configuration errors early, before attempting to connect to
// anything.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if len(appCfg.TokenSecret) < 32 {
		return fmt.Errorf("token_secret must be at least 32 bytes, got %d", len(appCfg.TokenSecret))
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}

	if appCfg.WorkbankAPIURL != "" && appCfg.WorkbankTokenURL == "" {
		return fmt.Errorf("workbank_api_url is set but workbank_token_url is empty")
	}
	if appCfg.CRMAPIURL != "" && appCfg.CRMAPIKey == "" {
		return fmt.Errorf("crm_api_url is set but crm_api_key is empty")
	}

	return nil
}
