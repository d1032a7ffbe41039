// internal/app/system/scope/resolver.go
package scope

import (
	"time"

	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
)

// Scope resolution policy for contracts and goals (same shape for both):
//
//	diretoria            unconstrained
//	superintendencia     region == principal.region
//	gerencia_regional    state  == principal.state
//	comercial            city   == principal.city
//	operacional          user_id == principal.uid
//
// Earlier revisions of this system disagreed on whether superintendencia
// was region-scoped or unconstrained; the region-scoped reading, the
// stricter of the two, is the one implemented here.
//
// Missing locality attributes resolve to None, never All: a
// gerencia_regional principal without a state sees zero records.

// ForContracts builds the read-scope predicate for the contracts
// collection. It never returns an error; ambiguous input degrades to a
// deny-all predicate.
func ForContracts(p principal.Principal) Predicate {
	return forOwnedResource(p)
}

// ForGoals builds the read-scope predicate for the goals collection.
// Goals carry the same denormalized locality fields as contracts and are
// scoped identically.
func ForGoals(p principal.Principal) Predicate {
	return forOwnedResource(p)
}

func forOwnedResource(p principal.Principal) Predicate {
	switch p.Role {
	case roles.Diretoria:
		return All()
	case roles.Superintendencia, roles.GerenciaRegional, roles.Comercial:
		field, value, _ := p.Locality()
		if value == "" {
			return None()
		}
		return Eq(field, value)
	case roles.Operacional:
		if p.UserID.IsZero() {
			return None()
		}
		return Eq("user_id", p.UserID)
	default:
		return None()
	}
}

// UserLocality builds the locality part of the user-administration scope.
// The role part (a principal may only list roles strictly below their own)
// is a set constraint and lives in userpolicy.ListScope; see that package.
func UserLocality(p principal.Principal) Predicate {
	switch p.Role {
	case roles.Diretoria:
		return All()
	case roles.Superintendencia, roles.GerenciaRegional, roles.Comercial:
		field, value, _ := p.Locality()
		if value == "" {
			return None()
		}
		return Eq(field, value)
	default:
		return None()
	}
}

// ContractFilters are the user-supplied display filters from the dashboard
// and reports pages. They are orthogonal to the security scope and only
// ever narrow it.
type ContractFilters struct {
	Status      string
	Promotora   string
	Regiao      string
	Tabela      string
	TipoEmpresa string
	ClientCPF   string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Apply conjoins the display filters onto base. The result matches a
// record only if base does; a None base stays None.
func (f ContractFilters) Apply(base Predicate) Predicate {
	clauses := []Predicate{base}
	if f.Status != "" {
		clauses = append(clauses, Eq("status", f.Status))
	}
	if f.Promotora != "" {
		clauses = append(clauses, Eq("promotora", f.Promotora))
	}
	if f.Regiao != "" {
		clauses = append(clauses, Eq("region", f.Regiao))
	}
	if f.Tabela != "" {
		clauses = append(clauses, Eq("tabela", f.Tabela))
	}
	if f.TipoEmpresa != "" {
		clauses = append(clauses, Eq("tipo_empresa", f.TipoEmpresa))
	}
	if f.ClientCPF != "" {
		clauses = append(clauses, Eq("client_cpf", f.ClientCPF))
	}
	if f.StartDate != nil {
		clauses = append(clauses, Gte("date", *f.StartDate))
	}
	if f.EndDate != nil {
		clauses = append(clauses, Lte("date", *f.EndDate))
	}
	return And(clauses...)
}
