// Package userpolicy provides authorization for user administration.
//
// Authorization rules:
//   - A principal lists and manages only roles strictly below their own,
//     within their own locality scope. Diretoria sees everyone.
//   - Role edits additionally require the actor to rank at or above
//     gerencia_regional, and the new role must stay below the actor's.
//   - Operacional has no user administration at all.
//
// Every function treats an unrecognized role as deny-all.
package userpolicy

import (
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/domain/models"
)

// ListScope bounds a user-administration listing.
type ListScope struct {
	// CanList indicates whether the principal may list users at all.
	CanList bool
	// Roles are the roles the listing may include (strictly below the
	// principal's own, except diretoria, which sees every role).
	Roles []roles.Role
	// Locality is the locality predicate the listing must apply on top
	// of the role constraint.
	Locality scope.Predicate
}

// ForList determines what slice of the user base p may list.
func ForList(p principal.Principal) ListScope {
	if !roles.IsValid(p.Role) || p.Role == roles.Operacional {
		return ListScope{CanList: false, Locality: scope.None()}
	}
	if p.Role == roles.Diretoria {
		return ListScope{CanList: true, Roles: roles.All(), Locality: scope.All()}
	}

	loc := scope.UserLocality(p)
	if loc.IsNone() {
		// Locality-scoped role without its attribute: fail closed.
		return ListScope{CanList: false, Locality: scope.None()}
	}
	return ListScope{CanList: true, Roles: roles.Below(p.Role), Locality: loc}
}

// CanView reports whether p may view target's record and drill into their
// contracts. Self-view is always allowed.
func CanView(p principal.Principal, target models.User) bool {
	if p.UserID == target.ID {
		return true
	}
	ls := ForList(p)
	if !ls.CanList {
		return false
	}
	targetRole, err := roles.Parse(target.Role)
	if err != nil {
		return false
	}
	inRoles := false
	for _, r := range ls.Roles {
		if r == targetRole {
			inRoles = true
			break
		}
	}
	if !inRoles {
		return false
	}
	return ls.Locality.MatchDoc(map[string]any{
		"city": target.City, "state": target.State, "region": target.Region,
	})
}

// CanEditRole reports whether actor may change target's role to newRole.
//
// Requirements, all of which must hold:
//   - actor ranks at or above gerencia_regional
//   - target's current role is strictly below the actor's own, or the
//     target is the actor themselves (diretoria manages every rank)
//   - actor is diretoria/superintendencia, OR shares locality with the
//     target at the actor's scope level, OR is the target themselves
//   - newRole is a known role strictly below the actor's own
//     (diretoria may assign any role, including diretoria)
func CanEditRole(actor principal.Principal, target models.User, newRole roles.Role) bool {
	if !roles.IsValid(actor.Role) || !roles.IsValid(newRole) {
		return false
	}
	if roles.Rank(actor.Role) > roles.Rank(roles.GerenciaRegional) {
		return false
	}

	// Authority only runs downward: an actor never edits a peer or a
	// superior, so a lower rank cannot strip a higher rank's access.
	if actor.Role != roles.Diretoria && actor.UserID != target.ID {
		targetRole, err := roles.Parse(target.Role)
		if err != nil || !roles.Broader(actor.Role, targetRole) {
			return false
		}
	}

	reachable := actor.Role == roles.Diretoria || actor.Role == roles.Superintendencia ||
		actor.UserID == target.ID ||
		actor.SameLocality(target.City, target.State, target.Region)
	if !reachable {
		return false
	}

	if actor.Role == roles.Diretoria {
		return true
	}
	// Non-diretoria actors may only hand out roles below their own.
	return roles.Rank(newRole) > roles.Rank(actor.Role)
}

// CanEditStatus reports whether actor may disable or enable target.
// Same reach as role edits.
func CanEditStatus(actor principal.Principal, target models.User) bool {
	if actor.UserID == target.ID {
		// Nobody locks themselves out through this endpoint.
		return false
	}
	return CanEditRole(actor, target, roles.Operacional)
}
