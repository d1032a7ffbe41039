// Package autherrors defines the shared error taxonomy for authentication
// and authorization failures.
//
// Read-scope narrowing never raises these: a read with a narrow scope
// silently returns fewer records. Write and administrative denials render
// an explicit 403 whose body comes from ErrAuthorization, so every policy
// refusal reads the same on the wire.
package autherrors

import "errors"

var (
	// ErrAuthentication means no valid principal could be resolved from
	// the request (missing, expired, or tampered identity token).
	ErrAuthentication = errors.New("authentication failed")

	// ErrAuthorization means a policy check explicitly denied the action.
	ErrAuthorization = errors.New("not authorized")

	// ErrMissingLocality means a role that requires a locality attribute
	// (state for gerencia_regional, city for comercial) has none set.
	// Scope resolvers convert this to a deny-all predicate on reads.
	ErrMissingLocality = errors.New("principal has no locality attribute for its role")
)
