// Package principal defines the resolved identity of the current caller.
//
// A Principal is built once per request from two independent sources:
// the verified identity token (whose role claim is authoritative) and the
// profile record (locality attributes only). It is passed explicitly
// through handlers and policy functions; there is no module-level current
// user.
package principal

import (
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller making a request.
//
// Role always comes from the signed token claim. A role stored on the
// profile record is informational only and must never reach this field.
// City/State/Region come from the profile record and may be empty; the
// scope resolver fails closed when a locality-scoped role has none.
type Principal struct {
	UserID primitive.ObjectID
	Email  string
	Nome   string
	Role   roles.Role

	City   string
	State  string
	Region string
}

// Locality returns the attribute the principal's role scopes by, and
// whether the role is locality-scoped at all.
func (p Principal) Locality() (field, value string, scoped bool) {
	switch p.Role {
	case roles.Superintendencia:
		return "region", p.Region, true
	case roles.GerenciaRegional:
		return "state", p.State, true
	case roles.Comercial:
		return "city", p.City, true
	default:
		return "", "", false
	}
}

// SameLocality reports whether the target locality attributes match the
// principal's at the principal's own scope level. Diretoria matches
// everything; a principal with a missing attribute matches nothing.
func (p Principal) SameLocality(city, state, region string) bool {
	switch p.Role {
	case roles.Diretoria:
		return true
	case roles.Superintendencia:
		return p.Region != "" && p.Region == region
	case roles.GerenciaRegional:
		return p.State != "" && p.State == state
	case roles.Comercial:
		return p.City != "" && p.City == city
	default:
		return false
	}
}
