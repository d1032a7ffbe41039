package ratelimit_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vendaops/contratohub/internal/app/system/ratelimit"
)

func TestAllowEnforcesLimit(t *testing.T) {
	l := ratelimit.New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("hit %d unexpectedly limited", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("fourth hit should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("a different key must not share the window")
	}
}

func TestResetClearsWindow(t *testing.T) {
	l := ratelimit.New(1, time.Minute)

	if !l.Allow("k") {
		t.Fatal("first hit limited")
	}
	if l.Allow("k") {
		t.Fatal("second hit should be limited")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("hit after Reset should be allowed")
	}
}

func TestRemaining(t *testing.T) {
	l := ratelimit.New(5, time.Minute)

	if got := l.Remaining("k"); got != 5 {
		t.Fatalf("Remaining before any hit = %d, want 5", got)
	}
	l.Allow("k")
	l.Allow("k")
	if got := l.Remaining("k"); got != 3 {
		t.Errorf("Remaining after 2 hits = %d, want 3", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{name: "forwarded-for first entry", xff: "203.0.113.9, 10.0.0.1", remote: "10.0.0.2:80", want: "203.0.113.9"},
		{name: "real-ip fallback", xri: "203.0.113.7", remote: "10.0.0.2:80", want: "203.0.113.7"},
		{name: "remote addr without port kept", remote: "203.0.113.5", want: "203.0.113.5"},
		{name: "remote addr port stripped", remote: "203.0.113.5:4433", want: "203.0.113.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ratelimit.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
