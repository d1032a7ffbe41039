// internal/app/features/dashboard/handler.go
package dashboard

import (
	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the dashboard aggregation endpoints. Every endpoint
// resolves the caller's contract scope first and runs its aggregation
// inside that scope, so two users with different roles hitting the same
// URL see different numbers.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierr.ErrorLogger
}

// NewHandler constructs a dashboard Handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, errLog *apierr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
	}
}
