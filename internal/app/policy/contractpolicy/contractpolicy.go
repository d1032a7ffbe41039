// Package contractpolicy provides authorization for contract reads.
//
// Authorization rules:
//   - Diretoria sees every contract
//   - Superintendencia sees contracts in their region
//   - Gerencia regional sees contracts in their state
//   - Comercial sees contracts in their city
//   - Operacional sees only contracts they own
//
// Read access is expressed as a scope predicate, never as an error: a
// principal outside a contract's scope simply doesn't receive it. Missing
// locality attributes and unknown roles resolve to a deny-all predicate.
package contractpolicy

import (
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/scope"
	"github.com/vendaops/contratohub/internal/domain/models"
)

// ReadScope returns the predicate bounding which contracts p may read.
func ReadScope(p principal.Principal) scope.Predicate {
	return scope.ForContracts(p)
}

// CanView reports whether p's scope covers one specific contract. Used by
// the user-detail view, which shows another user's contracts only insofar
// as the viewer could have listed them anyway.
func CanView(p principal.Principal, c models.Contract) bool {
	return ReadScope(p).MatchDoc(map[string]any{
		"user_id": c.UserID,
		"city":    c.City,
		"state":   c.State,
		"region":  c.Region,
	})
}

// CanEditStatus reports whether p may manually move a contract through its
// status lifecycle. The contract must fall inside p's scope and p must
// hold a managerial rank; operacional cannot flip the status of their own
// contracts, since paid status feeds goal progress.
func CanEditStatus(p principal.Principal, c models.Contract) bool {
	if !roles.BroaderOrEqual(p.Role, roles.Comercial) {
		return false
	}
	return CanView(p, c)
}
