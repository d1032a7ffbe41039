// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS). AppConfig is everything specific to ContratoHub:
// database connection, session and token secrets, CRM feed credentials,
// and sync scheduling.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Identity token configuration
	TokenSecret string        // HMAC secret for signing identity tokens
	TokenTTL    time.Duration // token lifetime

	// Audit logging routing per category: "all", "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string
	AuditLogSync  string

	// Workbank feed (OAuth2 client credentials)
	WorkbankAPIURL       string
	WorkbankClientID     string
	WorkbankClientSecret string
	WorkbankTokenURL     string

	// Internal CRM feed (static API key)
	CRMAPIURL string
	CRMAPIKey string

	// Contract sync scheduling
	SyncInterval time.Duration
	SyncEnabled  bool

	// BootstrapDiretoriaEmail promotes this account to diretoria on
	// startup so a fresh deployment has at least one administrator.
	BootstrapDiretoriaEmail string
}
