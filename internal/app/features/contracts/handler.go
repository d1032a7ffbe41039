// internal/app/features/contracts/handler.go
package contracts

import (
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the contract listing, filter-option, export, and status
// correction endpoints.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierr.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a contracts Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
