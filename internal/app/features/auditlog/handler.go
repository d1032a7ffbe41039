// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit trail. The router restricts it to diretoria.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierr.ErrorLogger
}

// NewHandler constructs an audit log Handler.
func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}
