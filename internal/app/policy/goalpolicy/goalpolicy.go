// Package goalpolicy provides authorization for goal reads and for
// cross-user goal assignment.
//
// Authorization rules:
//   - Reads are scoped exactly like contracts (same denormalized locality
//     fields), see scope.ForGoals.
//   - Assignment is strictly one level down the hierarchy (comercial →
//     operacional, gerencia_regional → comercial, superintendencia →
//     gerencia_regional) with a locality match at the actor's scope level.
//     Diretoria assigns to anyone.
//   - If the computed assignable set is empty and the actor's role may
//     self-assign, the actor themselves is the sole assignable target.
//
// Unlike read scoping, assignment is a write and denial is explicit:
// callers surface autherrors.ErrAuthorization rather than silently
// dropping the request.
package goalpolicy

import (
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/domain/models"
)

// ReadScope returns the predicate bounding which goals p may read.
func ReadScope(p principal.Principal) scope.Predicate {
	return scope.ForGoals(p)
}

// AssignableRoles returns the roles p may assign goals to.
func AssignableRoles(p principal.Principal) []roles.Role {
	return roles.Assignable(p.Role)
}

// CanAssign reports whether actor may assign a goal to target.
//
// The target's role must be in the actor's assignable set and, except for
// diretoria, the target's locality must match the actor's at the actor's
// scope level. Self-assignment is allowed for roles that permit it even
// when the one-level-down set would not include their own role.
func CanAssign(actor principal.Principal, target models.User) bool {
	targetRole, err := roles.Parse(target.Role)
	if err != nil {
		// Never assign to a user whose role we don't recognize.
		return false
	}

	if actor.UserID == target.ID {
		return roles.CanSelfAssign(actor.Role)
	}

	allowed := false
	for _, r := range roles.Assignable(actor.Role) {
		if r == targetRole {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	if actor.Role == roles.Diretoria {
		return true
	}
	return actor.SameLocality(target.City, target.State, target.Region)
}

// CanEdit reports whether actor may update or delete an existing goal.
// The caller looks up the goal's assignee; authority over the assignee
// implies authority over their goals. Progress updates arriving from sync
// bypass this check; manual edits always require assignment authority.
func CanEdit(actor principal.Principal, assignee models.User) bool {
	return CanAssign(actor, assignee)
}
