package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/vendaops/contratohub/internal/app/system/auth"
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrincipalFor builds a request principal from a fixture user, the way
// the auth middleware would after verifying their token.
func PrincipalFor(u models.User) principal.Principal {
	return principal.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Nome:   u.Nome,
		Role:   roles.Role(u.Role),
		City:   u.City,
		State:  u.State,
		Region: u.Region,
	}
}

// DiretoriaPrincipal returns a fresh diretoria principal.
func DiretoriaPrincipal() principal.Principal {
	return principal.Principal{
		UserID: primitive.NewObjectID(),
		Email:  "dir@exemplo.com",
		Nome:   "Diretoria Teste",
		Role:   roles.Diretoria,
	}
}

// ComercialPrincipal returns a fresh comercial principal scoped to city.
func ComercialPrincipal(city, state, region string) principal.Principal {
	return principal.Principal{
		UserID: primitive.NewObjectID(),
		Email:  "com@exemplo.com",
		Nome:   "Comercial Teste",
		Role:   roles.Comercial,
		City:   city,
		State:  state,
		Region: region,
	}
}

// WithPrincipal injects a principal into the request context, bypassing
// the token middleware.
func WithPrincipal(r *http.Request, p principal.Principal) *http.Request {
	return auth.WithTestPrincipal(r, p)
}

// NewRequest creates an HTTP request for testing. A non-empty body is
// sent as JSON.
func NewRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// NewAuthenticatedRequest creates an HTTP request with a principal in context.
func NewAuthenticatedRequest(method, target, body string, p principal.Principal) *http.Request {
	return WithPrincipal(NewRequest(method, target, body), p)
}
