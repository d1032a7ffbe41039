package csvutil

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWriteContracts(t *testing.T) {
	contracts := []models.Contract{
		{
			ID:         primitive.NewObjectID(),
			ExternalID: "wb-1",
			ClientName: "João da Silva",
			ClientCPF:  "12345678900",
			Status:     "pago",
			Date:       time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			Value:      1500.5,
			Promotora:  "Promo Alpha",
			City:       "Salvador",
			State:      "BA",
			Region:     "Nordeste",
		},
		{
			ID:         primitive.NewObjectID(),
			ClientName: "Maria",
			Status:     "pendente",
			Date:       time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
			Value:      200,
		},
	}

	var buf bytes.Buffer
	if err := WriteContracts(&buf, contracts); err != nil {
		t.Fatalf("WriteContracts failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\xef\xbb\xbf") {
		t.Error("expected UTF-8 BOM prefix")
	}

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\xef\xbb\xbf"))).ReadAll()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Contrato" || rows[0][5] != "Valor" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "wb-1" || rows[1][1] != "João da Silva" || rows[1][5] != "1500.50" {
		t.Errorf("row 1 = %v", rows[1])
	}
	// Manually entered contracts fall back to the ObjectID.
	if rows[2][0] != contracts[1].ID.Hex() {
		t.Errorf("row 2 id = %q", rows[2][0])
	}
	if rows[1][4] != "2026-08-10" {
		t.Errorf("date = %q", rows[1][4])
	}
}

func TestWriteContracts_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteContracts(&buf, nil); err != nil {
		t.Fatalf("WriteContracts failed: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\xef\xbb\xbf"))).ReadAll()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected bare header, got %d rows", len(rows))
	}
}
