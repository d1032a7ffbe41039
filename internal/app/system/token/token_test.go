package token

import (
	"errors"
	"testing"
	"time"

	"github.com/vendaops/contratohub/internal/app/system/roles"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	if _, err := NewManager("too-short", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	tok, err := m.Issue("user-1", "comercial.ssa@exemplo.com", roles.Comercial, 3)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != roles.Comercial {
		t.Errorf("Role = %q, want comercial", claims.Role)
	}
	if claims.Epoch != 3 {
		t.Errorf("Epoch = %d, want 3", claims.Epoch)
	}
}

func TestIssue_RefusesUnknownRole(t *testing.T) {
	m := newTestManager(t, time.Hour)
	if _, err := m.Issue("user-1", "x@exemplo.com", roles.Role("admin"), 0); !errors.Is(err, roles.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other, err := NewManager("ffffffffffffffffffffffffffffffff", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	tok, err := other.Issue("user-1", "x@exemplo.com", roles.Diretoria, 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret must not verify, got %v", err)
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	tok, err := m.Issue("user-1", "x@exemplo.com", roles.Diretoria, 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must not verify, got %v", err)
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	m := newTestManager(t, time.Hour)
	if _, err := m.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
