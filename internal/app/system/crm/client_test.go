package crm_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vendaops/contratohub/internal/app/system/crm"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"paid", "pago", true},
		{"pago", "pago", true},
		{"pending", "pendente", true},
		{"cancelled", "cancelado", true},
		{"canceled", "cancelado", true},
		{"cancelado", "cancelado", true},
		{"open", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := crm.MapStatus(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("MapStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestInternalClient_FetchContracts(t *testing.T) {
	var gotKey, gotSince string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/contracts" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("X-API-Key")
		gotSince = r.URL.Query().Get("updated_since")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"contracts":[
			{"id":"c-1","owner_email":"ana@exemplo.com","client_name":"Cliente A","value":1500,"status":"paid","date":"2026-08-10T00:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	client := crm.NewInternal(crm.InternalConfig{BaseURL: srv.URL, APIKey: "secret-key"})

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records, err := client.FetchContracts(t.Context(), since)
	if err != nil {
		t.Fatalf("FetchContracts failed: %v", err)
	}

	if gotKey != "secret-key" {
		t.Errorf("X-API-Key = %q", gotKey)
	}
	if gotSince != "2026-08-01T00:00:00Z" {
		t.Errorf("updated_since = %q", gotSince)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != "c-1" || records[0].OwnerEmail != "ana@exemplo.com" || records[0].Value != 1500 {
		t.Errorf("record = %+v", records[0])
	}
}

func TestInternalClient_FetchContracts_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := crm.NewInternal(crm.InternalConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, err := client.FetchContracts(t.Context(), time.Time{}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
