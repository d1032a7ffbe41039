// internal/app/features/shared/contractfilters/contractfilters.go

// Package contractfilters parses the display-filter query parameters shared
// by the dashboard and contract listing endpoints.
//
// These filters only ever narrow the caller's security scope; see
// scope.ContractFilters.Apply.
package contractfilters

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/vendaops/contratohub/internal/app/system/scope"
)

// Parse reads the display filters from the request query string.
//
// Recognized parameters: status, promotora, regiao, tabela, tipo_empresa,
// cpf, start_date, end_date (dates as YYYY-MM-DD). Unparseable dates are
// ignored rather than rejected; a bad date narrows nothing.
func Parse(r *http.Request) scope.ContractFilters {
	f := scope.ContractFilters{
		Status:      query.Get(r, "status"),
		Promotora:   query.Get(r, "promotora"),
		Regiao:      query.Get(r, "regiao"),
		Tabela:      query.Get(r, "tabela"),
		TipoEmpresa: query.Get(r, "tipo_empresa"),
		ClientCPF:   query.Get(r, "cpf"),
	}

	if s := query.Get(r, "start_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			f.StartDate = &t
		}
	}
	if s := query.Get(r, "end_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			// End of day, so the named date is inclusive.
			endOfDay := t.Add(24*time.Hour - time.Second)
			f.EndDate = &endOfDay
		}
	}

	return f
}
