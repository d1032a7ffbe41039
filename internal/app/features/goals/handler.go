// internal/app/features/goals/handler.go
package goals

import (
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves goal listing, assignment, and management.
//
// Assignment authority is the one-level-down rule in goalpolicy: a manager
// assigns goals to the rank directly below, inside their own locality.
// Reads use the same locality scoping as contracts.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierr.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a goals Handler bound to the given Mongo database
// and logger.
func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
