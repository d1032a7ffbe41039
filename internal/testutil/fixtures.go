package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

var emailCounter atomic.Int64

// CreateUser inserts a user in the given role and locality. The email is
// derived from the name and made unique across the test database.
func (f *Fixtures) CreateUser(ctx context.Context, nome, role, city, state, region string) models.User {
	f.t.Helper()

	email := fmt.Sprintf("%s.%d@exemplo.com",
		strings.ReplaceAll(text.Fold(nome), " ", "."), emailCounter.Add(1))

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Nome:      nome,
		NomeCI:    text.Fold(nome),
		Email:     email,
		Role:      role,
		Status:    "active",
		City:      city,
		State:     state,
		Region:    region,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateDisabledUser inserts a disabled user.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, nome, role, city, state, region string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, nome, role, city, state, region)
	if _, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]any{"$set": map[string]any{"status": "disabled"}}); err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}
	u.Status = "disabled"
	return u
}

// CreateContract inserts a contract owned by owner, snapshotting the
// owner's locality the way the store does.
func (f *Fixtures) CreateContract(ctx context.Context, owner models.User, clientName string, value float64, status string, date time.Time) models.Contract {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Contract{
		ID:           primitive.NewObjectID(),
		UserID:       owner.ID,
		ClientName:   clientName,
		ClientNameCI: text.Fold(clientName),
		Value:        value,
		Date:         date,
		Status:       status,
		City:         owner.City,
		State:        owner.State,
		Region:       owner.Region,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("contracts").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test contract: %v", err)
	}
	return c
}

// CreateContractDetailed is CreateContract plus the CRM attribute fields.
func (f *Fixtures) CreateContractDetailed(ctx context.Context, owner models.User, clientName string, value float64, status string, date time.Time, promotora, tabela, tipoEmpresa string) models.Contract {
	f.t.Helper()

	c := f.CreateContract(ctx, owner, clientName, value, status, date)
	if _, err := f.db.Collection("contracts").UpdateByID(ctx, c.ID, map[string]any{
		"$set": map[string]any{
			"promotora":    promotora,
			"tabela":       tabela,
			"tipo_empresa": tipoEmpresa,
		},
	}); err != nil {
		f.t.Fatalf("failed to update test contract: %v", err)
	}
	c.Promotora = promotora
	c.Tabela = tabela
	c.TipoEmpresa = tipoEmpresa
	return c
}

// CreateGoal inserts a goal assigned to user, snapshotting their locality.
func (f *Fixtures) CreateGoal(ctx context.Context, user models.User, goalType string, target float64, period string) models.Goal {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Goal{
		ID:          primitive.NewObjectID(),
		UserID:      user.ID,
		Description: "Meta de " + period,
		Type:        goalType,
		Target:      target,
		Period:      period,
		City:        user.City,
		State:       user.State,
		Region:      user.Region,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("goals").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test goal: %v", err)
	}
	return g
}

// CreateNotification inserts an unread notification for user.
func (f *Fixtures) CreateNotification(ctx context.Context, user models.User, message string) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
