// Package token issues and verifies the signed identity tokens that carry
// the authoritative role claim.
//
// The role claim on the token is the single source of truth for
// authorization. The profile record's role field is display-only and is
// never read by any policy function. Tokens also carry the user's token
// epoch: an administrative role change bumps the stored epoch, which makes
// every token issued before the change fail verification, forcing
// re-authentication with the new role.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vendaops/contratohub/internal/app/system/autherrors"
	"github.com/vendaops/contratohub/internal/app/system/roles"
)

// ErrInvalidToken covers malformed, mis-signed, and expired tokens. It
// wraps autherrors.ErrAuthentication so callers can class the failure
// without importing this package's sentinel.
var ErrInvalidToken = fmt.Errorf("token: %w: invalid identity token", autherrors.ErrAuthentication)

// Claims is the decoded payload of a verified identity token.
type Claims struct {
	UserID string
	Email  string
	Role   roles.Role
	Epoch  int64
}

// Manager signs and verifies identity tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. ttl bounds how long an issued token
// verifies; role changes cut sessions short via the epoch check regardless.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token: secret must be at least 32 bytes, got %d", len(secret))
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for the given user. The role must already be
// validated by the caller; unknown roles are refused here as well so a bad
// write path can never mint a token the verifier would trust.
func (m *Manager) Issue(userID, email string, role roles.Role, epoch int64) (string, error) {
	if !roles.IsValid(role) {
		return "", fmt.Errorf("token: %w: %q", roles.ErrUnknownRole, role)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"epoch": epoch,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token string, returning its claims.
// Any defect (bad signature, expiry, missing or unknown role claim)
// resolves to an error; there is no default role.
func (m *Manager) Verify(tokenString string) (Claims, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}

	roleStr, _ := mc["role"].(string)
	role, err := roles.Parse(roleStr)
	if err != nil {
		// A token without a recognizable role claim authenticates nobody.
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := mc["email"].(string)

	var epoch int64
	switch v := mc["epoch"].(type) {
	case float64:
		epoch = int64(v)
	case int64:
		epoch = v
	}

	return Claims{UserID: sub, Email: email, Role: role, Epoch: epoch}, nil
}
