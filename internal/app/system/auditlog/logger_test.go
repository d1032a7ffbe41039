package auditlog_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/vendaops/contratohub/internal/app/store/audit"
	"github.com/vendaops/contratohub/internal/app/system/auditlog"
	"github.com/vendaops/contratohub/internal/testutil"
	"go.uber.org/zap"
)

func TestLogger_RoutesByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:  "db",
		Admin: "log", // zap only, nothing persisted
		Sync:  "off",
	})

	r := httptest.NewRequest("POST", "/login", nil)
	logger.LoginFailedUserNotFound(ctx, r, "ghost@exemplo.com")

	actor := testutil.DiretoriaPrincipal()
	logger.RoleChanged(ctx, r, actor, actor.UserID, "operacional", "comercial")
	logger.SyncRun(ctx, "workbank", "run-1", 3, 1, 0, nil)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the auth event persisted, got %d", len(events))
	}
	if events[0].Action != audit.EventLoginFailedUserNotFound {
		t.Errorf("action = %q", events[0].Action)
	}
}

func TestLogger_NilIsNoop(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var logger *auditlog.Logger
	logger.SyncRun(ctx, "workbank", "run-1", 0, 0, 0, errors.New("boom"))
}

func TestLogger_SyncRunRecordsFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Sync: "db"})
	logger.SyncRun(ctx, "workbank", "run-9", 2, 0, 5, errors.New("crm unreachable"))

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategorySync})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 sync event, got %d", len(events))
	}
	e := events[0]
	if e.Action != audit.EventSyncFailed || e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.Details["failed"] != "5" || e.Details["run_id"] != "run-9" {
		t.Errorf("details = %v", e.Details)
	}
}

func TestLogger_ClientIPFromForwardedHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	r := httptest.NewRequest("POST", "/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	actor := testutil.DiretoriaPrincipal()
	logger.LoginSuccess(ctx, r, actor.UserID, actor.Email)

	events, err := store.GetRecent(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 || events[0].IP != "203.0.113.9" {
		t.Fatalf("expected forwarded IP, got %+v", events)
	}
}
