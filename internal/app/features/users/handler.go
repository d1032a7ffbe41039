// internal/app/features/users/handler.go
package users

import (
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves user administration: listing, detail with the user's
// production numbers, account creation, and role/status changes.
//
// What a caller may see or touch is decided per request by userpolicy;
// listing visibility is strictly below the caller's own rank except for
// diretoria.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierr.ErrorLogger
	AuditLog *auditlog.Logger
}

// NewHandler constructs a users Handler bound to the given Mongo database
// and logger.
func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
