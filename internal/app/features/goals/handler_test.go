package goals_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/goals"
	goalstore "github.com/vendaops/contratohub/internal/app/store/goals"
	"github.com/vendaops/contratohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *goals.Handler {
	logger := zap.NewNop()
	return goals.NewHandler(db, apierr.NewErrorLogger(logger), nil, logger)
}

func createBody(userID, goalType, period string, target float64) string {
	return fmt.Sprintf(`{"user_id":%q,"description":"Meta mensal","type":%q,"target":%v,"period":%q}`,
		userID, goalType, target, period)
}

func TestHandleCreate_AssignsOneLevelDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	gerente := fix.CreateUser(ctx, "Gerente Bahia", "gerencia_regional", "", "BA", "Nordeste")
	vendedor := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/goals",
		createBody(vendedor.ID.Hex(), "value", "2026-09", 10000), testutil.PrincipalFor(gerente))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created struct {
		ID     string  `json:"id"`
		UserID string  `json:"user_id"`
		Target float64 `json:"target"`
		Region string  `json:"region"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if created.UserID != vendedor.ID.Hex() {
		t.Errorf("user_id = %s, want %s", created.UserID, vendedor.ID.Hex())
	}
	if created.Target != 10000 {
		t.Errorf("target = %v, want 10000", created.Target)
	}
	// Locality is snapshotted from the assignee at creation time.
	if created.Region != "Nordeste" {
		t.Errorf("region = %q, want Nordeste", created.Region)
	}

	// The assignee should have been notified.
	notes, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"user_id": vendedor.ID})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if notes != 1 {
		t.Errorf("notifications = %d, want 1", notes)
	}
}

func TestHandleCreate_Denied(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	gerente := fix.CreateUser(ctx, "Gerente Bahia", "gerencia_regional", "", "BA", "Nordeste")
	sudeste := fix.CreateUser(ctx, "Vendedor Rio", "comercial", "Rio de Janeiro", "RJ", "Sudeste")
	operacional := fix.CreateUser(ctx, "Operador", "operacional", "Salvador", "BA", "Nordeste")

	h := newHandler(db)

	t.Run("outside locality", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/goals",
			createBody(sudeste.ID.Hex(), "value", "2026-09", 5000), testutil.PrincipalFor(gerente))
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("operacional cannot assign to others", func(t *testing.T) {
		colega := fix.CreateUser(ctx, "Operadora Colega", "operacional", "Salvador", "BA", "Nordeste")
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/goals",
			createBody(colega.ID.Hex(), "value", "2026-09", 5000), testutil.PrincipalFor(operacional))
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})
}

func TestHandleCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	vendedor := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	h := newHandler(db)
	diretoria := testutil.DiretoriaPrincipal()

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad user id", createBody("nope", "value", "2026-09", 100), http.StatusBadRequest},
		{"bad type", createBody(vendedor.ID.Hex(), "revenue", "2026-09", 100), http.StatusBadRequest},
		{"zero target", createBody(vendedor.ID.Hex(), "value", "2026-09", 0), http.StatusBadRequest},
		{"bad period", createBody(vendedor.ID.Hex(), "value", "setembro", 100), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(http.MethodPost, "/goals", tc.body, diretoria)
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandleCreate_DuplicateConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	vendedor := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	fix.CreateGoal(ctx, vendedor, "value", 5000, "2026-09")

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/goals",
		createBody(vendedor.ID.Hex(), "value", "2026-09", 8000), testutil.DiretoriaPrincipal())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusConflict, rec.Body.String())
	}
}

func TestHandleUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	vendedor := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	goal := fix.CreateGoal(ctx, vendedor, "value", 5000, "2026-09")

	h := newHandler(db)

	t.Run("editor outside locality denied", func(t *testing.T) {
		outro := fix.CreateUser(ctx, "Gerente Sudeste", "gerencia_regional", "", "", "Sudeste")
		req := testutil.NewAuthenticatedRequest(http.MethodPut, "/goals/"+goal.ID.Hex(),
			`{"description":"Ajuste","target":7000}`, testutil.PrincipalFor(outro))
		req = testutil.WithChiURLParam(req, "id", goal.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleUpdate(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodPut, "/goals/"+goal.ID.Hex(),
			`{"description":"Meta revisada","target":7000}`, testutil.DiretoriaPrincipal())
		req = testutil.WithChiURLParam(req, "id", goal.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleUpdate(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}

		stored, err := goalstore.New(db).GetByID(ctx, goal.ID)
		if err != nil {
			t.Fatalf("reload goal: %v", err)
		}
		if stored.Target != 7000 {
			t.Errorf("target = %v, want 7000", stored.Target)
		}
		if stored.Description != "Meta revisada" {
			t.Errorf("description = %q, want %q", stored.Description, "Meta revisada")
		}
	})
}

func TestHandleDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	vendedor := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	goal := fix.CreateGoal(ctx, vendedor, "count", 12, "2026-09")

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/goals/"+goal.ID.Hex(), "",
		testutil.DiretoriaPrincipal())
	req = testutil.WithChiURLParam(req, "id", goal.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if _, err := goalstore.New(db).GetByID(ctx, goal.ID); err == nil {
		t.Error("goal still present after delete")
	}
}

func TestServeList_ScopedByLocality(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	salvador := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	rio := fix.CreateUser(ctx, "Vendedor Rio", "comercial", "Rio de Janeiro", "RJ", "Sudeste")
	mine := fix.CreateGoal(ctx, salvador, "value", 5000, "2026-09")
	fix.CreateGoal(ctx, rio, "value", 9000, "2026-09")

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/goals", "",
		testutil.PrincipalFor(salvador))
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Goals []struct {
			ID string `json:"id"`
		} `json:"goals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(resp.Goals) != 1 {
		t.Fatalf("goals = %d, want 1", len(resp.Goals))
	}
	if resp.Goals[0].ID != mine.ID.Hex() {
		t.Errorf("goal id = %s, want %s", resp.Goals[0].ID, mine.ID.Hex())
	}
}

func TestServeAssignableUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	gerente := fix.CreateUser(ctx, "Gerente Bahia", "gerencia_regional", "", "BA", "Nordeste")
	dentro := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	fix.CreateUser(ctx, "Vendedor Rio", "comercial", "Rio de Janeiro", "RJ", "Sudeste")
	operacional := fix.CreateUser(ctx, "Operador", "operacional", "Salvador", "BA", "Nordeste")

	h := newHandler(db)

	t.Run("gerencia sees comercial in state", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/goals/assignable-users", "",
			testutil.PrincipalFor(gerente))
		rec := httptest.NewRecorder()
		h.ServeAssignableUsers(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Users []struct {
				ID   string `json:"id"`
				Role string `json:"role"`
			} `json:"users"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if len(resp.Users) != 1 {
			t.Fatalf("users = %d, want 1 (got %s)", len(resp.Users), rec.Body.String())
		}
		if resp.Users[0].ID != dentro.ID.Hex() {
			t.Errorf("user id = %s, want %s", resp.Users[0].ID, dentro.ID.Hex())
		}
	})

	t.Run("operacional falls back to themselves", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/goals/assignable-users", "",
			testutil.PrincipalFor(operacional))
		rec := httptest.NewRecorder()
		h.ServeAssignableUsers(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Users []struct {
				ID   string `json:"id"`
				Role string `json:"role"`
			} `json:"users"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if len(resp.Users) != 1 {
			t.Fatalf("users = %d, want the caller alone (got %s)", len(resp.Users), rec.Body.String())
		}
		if resp.Users[0].ID != operacional.ID.Hex() {
			t.Errorf("user id = %s, want %s", resp.Users[0].ID, operacional.ID.Hex())
		}
		if resp.Users[0].Role != "operacional" {
			t.Errorf("role = %q, want operacional", resp.Users[0].Role)
		}
	})

	t.Run("comercial with no operacional in city falls back to themselves", func(t *testing.T) {
		sozinho := fix.CreateUser(ctx, "Vendedor Aracaju", "comercial", "Aracaju", "SE", "Nordeste")
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/goals/assignable-users", "",
			testutil.PrincipalFor(sozinho))
		rec := httptest.NewRecorder()
		h.ServeAssignableUsers(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Users []struct {
				ID string `json:"id"`
			} `json:"users"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if len(resp.Users) != 1 || resp.Users[0].ID != sozinho.ID.Hex() {
			t.Fatalf("want the caller as sole target, got %s", rec.Body.String())
		}
	})
}
