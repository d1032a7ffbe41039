// Package roles defines the closed role hierarchy used for every
// authorization decision in the service.
//
// Roles are ordered broadest to narrowest authority:
//
//	diretoria > superintendencia > gerencia_regional > comercial > operacional
//
// A lower rank means broader scope. Any role string outside this set is
// rejected with ErrUnknownRole; callers must treat unknown roles as "no
// access", never as "full access".
package roles

import (
	"errors"
	"fmt"
	"strings"
)

// Role is one of the five fixed dashboard roles.
type Role string

const (
	Diretoria        Role = "diretoria"
	Superintendencia Role = "superintendencia"
	GerenciaRegional Role = "gerencia_regional"
	Comercial        Role = "comercial"
	Operacional      Role = "operacional"
)

// ErrUnknownRole is returned for any role string outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// ranks maps each role to its hierarchy rank. Lower = broader authority.
var ranks = map[Role]int{
	Diretoria:        0,
	Superintendencia: 1,
	GerenciaRegional: 2,
	Comercial:        3,
	Operacional:      4,
}

// byRank lists the roles in rank order, broadest first.
var byRank = []Role{Diretoria, Superintendencia, GerenciaRegional, Comercial, Operacional}

// Parse normalizes and validates a role string.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ranks[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// IsValid reports whether r is one of the five known roles.
func IsValid(r Role) bool {
	_, ok := ranks[r]
	return ok
}

// Rank returns the hierarchy rank of r (0 = diretoria). Unknown roles get
// the sentinel rank len(byRank), below every real role, so comparisons
// against an unknown role always fail closed.
func Rank(r Role) int {
	if n, ok := ranks[r]; ok {
		return n
	}
	return len(byRank)
}

// Broader reports whether a outranks b strictly.
func Broader(a, b Role) bool {
	return IsValid(a) && IsValid(b) && Rank(a) < Rank(b)
}

// BroaderOrEqual reports whether a outranks or equals b.
func BroaderOrEqual(a, b Role) bool {
	return IsValid(a) && IsValid(b) && Rank(a) <= Rank(b)
}

// Below returns the roles strictly narrower than r, broadest first.
// Unknown roles get nothing.
func Below(r Role) []Role {
	if !IsValid(r) {
		return nil
	}
	return byRank[Rank(r)+1:]
}

// All returns every role, broadest first.
func All() []Role {
	out := make([]Role, len(byRank))
	copy(out, byRank)
	return out
}

// Assignable returns the roles an actor may assign goals to: a strict
// one-level-down mapping, except diretoria, which may target any role.
func Assignable(actor Role) []Role {
	switch actor {
	case Diretoria:
		return All()
	case Superintendencia:
		return []Role{GerenciaRegional}
	case GerenciaRegional:
		return []Role{Comercial}
	case Comercial:
		return []Role{Operacional}
	default:
		// operacional and anything unknown assign to nobody
		return nil
	}
}

// CanSelfAssign reports whether a role may receive goals it assigns itself.
// Used as the fallback when an actor's assignable set resolves to no users.
func CanSelfAssign(actor Role) bool {
	switch actor {
	case Comercial, Operacional:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }
