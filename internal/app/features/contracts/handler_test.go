package contracts_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vendaops/contratohub/internal/app/features/apierr"
	"github.com/vendaops/contratohub/internal/app/features/contracts"
	contractstore "github.com/vendaops/contratohub/internal/app/store/contracts"
	"github.com/vendaops/contratohub/internal/app/system/csvutil"
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/domain/models"
	"github.com/vendaops/contratohub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *contracts.Handler {
	logger := zap.NewNop()
	return contracts.NewHandler(db, apierr.NewErrorLogger(logger), nil, logger)
}

type listResponse struct {
	Contracts  []models.Contract `json:"contracts"`
	Total      int64             `json:"total"`
	HasPrev    bool              `json:"has_prev"`
	HasNext    bool              `json:"has_next"`
	PrevCursor string            `json:"prev_cursor"`
	NextCursor string            `json:"next_cursor"`
}

func getList(t *testing.T, h *contracts.Handler, target string) listResponse {
	t.Helper()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, target, "", testutil.DiretoriaPrincipal())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: status = %d (body %s)", target, rec.Code, rec.Body.String())
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	return resp
}

func TestServeList_ScopedByCity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	salvador := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	rio := fix.CreateUser(ctx, "Vendedor Rio", "comercial", "Rio de Janeiro", "RJ", "Sudeste")

	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	fix.CreateContract(ctx, salvador, "Cliente Salvador", 1000, "pago", date)
	fix.CreateContract(ctx, rio, "Cliente Rio", 2000, "pago", date)

	h := newHandler(db)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/contracts", "",
		testutil.ComercialPrincipal("Salvador", "BA", "Nordeste"))
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}

	if resp.Total != 1 || len(resp.Contracts) != 1 {
		t.Fatalf("total = %d, rows = %d, want 1/1", resp.Total, len(resp.Contracts))
	}
	if resp.Contracts[0].ClientName != "Cliente Salvador" {
		t.Errorf("got contract %q, want the Salvador one", resp.Contracts[0].ClientName)
	}
}

func TestServeList_PagesNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Vendedor", "comercial", "Salvador", "BA", "Nordeste")

	// 60 contracts, one per day, so the first page is the newest 50.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		fix.CreateContract(ctx, owner, fmt.Sprintf("Cliente %02d", i), 100, "pago", base.AddDate(0, 0, i))
	}

	h := newHandler(db)

	first := getList(t, h, "/contracts")
	if len(first.Contracts) != 50 {
		t.Fatalf("first page has %d rows, want 50", len(first.Contracts))
	}
	if first.Total != 60 {
		t.Errorf("total = %d, want 60", first.Total)
	}
	if first.HasPrev || !first.HasNext {
		t.Errorf("first page HasPrev=%v HasNext=%v, want false/true", first.HasPrev, first.HasNext)
	}
	if !first.Contracts[0].Date.After(first.Contracts[1].Date) {
		t.Error("expected newest-first ordering")
	}

	second := getList(t, h, "/contracts?after="+first.NextCursor)
	if len(second.Contracts) != 10 {
		t.Fatalf("second page has %d rows, want 10", len(second.Contracts))
	}
	if !second.HasPrev || second.HasNext {
		t.Errorf("second page HasPrev=%v HasNext=%v, want true/false", second.HasPrev, second.HasNext)
	}

	// No row should appear on both pages.
	seen := make(map[string]bool)
	for _, c := range first.Contracts {
		seen[c.ID.Hex()] = true
	}
	for _, c := range second.Contracts {
		if seen[c.ID.Hex()] {
			t.Fatalf("contract %s appears on both pages", c.ID.Hex())
		}
	}
}

func TestServeList_FiltersNarrow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Vendedor", "comercial", "Salvador", "BA", "Nordeste")
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	fix.CreateContract(ctx, owner, "Pago", 100, "pago", date)
	fix.CreateContract(ctx, owner, "Pendente", 100, "pendente", date)

	h := newHandler(db)

	resp := getList(t, h, "/contracts?status=pendente")
	if resp.Total != 1 {
		t.Fatalf("total = %d, want 1", resp.Total)
	}
	if resp.Contracts[0].Status != "pendente" {
		t.Errorf("status = %q, want pendente", resp.Contracts[0].Status)
	}
}

func TestServeFilterOptions_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	salvador := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	rio := fix.CreateUser(ctx, "Vendedor Rio", "comercial", "Rio de Janeiro", "RJ", "Sudeste")
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	fix.CreateContractDetailed(ctx, salvador, "A", 100, "pago", date, "PromoLocal", "", "")
	fix.CreateContractDetailed(ctx, rio, "B", 100, "pago", date, "PromoForaDeEscopo", "", "")

	h := newHandler(db)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/contracts/filter-options", "",
		testutil.ComercialPrincipal("Salvador", "BA", "Nordeste"))
	rec := httptest.NewRecorder()
	h.ServeFilterOptions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var opts struct {
		Promotoras []string `json:"promotoras"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	for _, p := range opts.Promotoras {
		if p == "PromoForaDeEscopo" {
			t.Error("filter options leaked a value outside the caller's scope")
		}
	}
}

func TestServeExport_CSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Vendedor", "comercial", "Salvador", "BA", "Nordeste")
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	fix.CreateContract(ctx, owner, "Cliente CSV", 1500.50, "pago", date)

	h := newHandler(db)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/contracts/export", "",
		testutil.DiretoriaPrincipal())
	rec := httptest.NewRecorder()
	h.ServeExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "contratos.csv") {
		t.Errorf("Content-Disposition = %q, want attachment with contratos.csv", cd)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "\xef\xbb\xbf") {
		t.Error("expected UTF-8 BOM at start of export")
	}
	if !strings.Contains(body, "Cliente CSV") || !strings.Contains(body, "1500.50") {
		t.Errorf("export missing expected row, got:\n%s", body)
	}

	// Sanity check the cap constant is in effect for the query limit.
	if csvutil.MaxExportRows < 1 {
		t.Fatal("MaxExportRows must be positive")
	}
}

func TestHandleUpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	vendedor := fix.CreateUser(ctx, "Vendedor Salvador", "comercial", "Salvador", "BA", "Nordeste")
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	h := newHandler(db)

	put := func(id, body string, p principal.Principal) *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPut, "/contracts/"+id+"/status", body, p)
		req = testutil.WithChiURLParam(req, "id", id)
		rec := httptest.NewRecorder()
		h.HandleUpdateStatus(rec, req)
		return rec
	}

	t.Run("manager inside scope corrects the status", func(t *testing.T) {
		c := fix.CreateContract(ctx, vendedor, "Cliente Corrigido", 1000, "pendente", date)
		gerente := fix.CreateUser(ctx, "Gerente BA", "gerencia_regional", "", "BA", "Nordeste")

		rec := put(c.ID.Hex(), `{"status":"pago"}`, testutil.PrincipalFor(gerente))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		stored, err := contractstore.New(db).GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("reload contract: %v", err)
		}
		if stored.Status != "pago" {
			t.Errorf("stored status = %q, want pago", stored.Status)
		}
	})

	t.Run("operacional owner cannot flip own contract", func(t *testing.T) {
		op := fix.CreateUser(ctx, "Operador Salvador", "operacional", "Salvador", "BA", "Nordeste")
		c := fix.CreateContract(ctx, op, "Cliente Operacional", 500, "pendente", date)

		rec := put(c.ID.Hex(), `{"status":"pago"}`, testutil.PrincipalFor(op))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("out of scope answers not found", func(t *testing.T) {
		c := fix.CreateContract(ctx, vendedor, "Cliente Fora", 800, "pendente", date)

		rec := put(c.ID.Hex(), `{"status":"pago"}`, testutil.ComercialPrincipal("Rio de Janeiro", "RJ", "Sudeste"))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		c := fix.CreateContract(ctx, vendedor, "Cliente Ruim", 800, "pendente", date)

		rec := put(c.ID.Hex(), `{"status":"paused"}`, testutil.DiretoriaPrincipal())
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}
