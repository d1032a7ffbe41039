// Package ratelimit is a fixed-window request limiter keyed by arbitrary
// strings, used to bound password attempts per client IP.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count     int
	expiresAt time.Time
}

// Limiter counts hits per key inside a rolling window. Safe for
// concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit    int
	duration time.Duration
}

// New creates a limiter allowing limit hits per key per duration. A
// background goroutine evicts expired keys for the lifetime of the
// process.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    limit,
		duration: duration,
	}
	go l.evictLoop(2 * duration)
	return l
}

// Allow records a hit for key and reports whether it fits the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.expiresAt) {
		l.buckets[key] = &bucket{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

// Remaining reports how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || time.Now().After(b.expiresAt) {
		return l.limit
	}
	if rem := l.limit - b.count; rem > 0 {
		return rem
	}
	return 0
}

// Reset forgets key. Called after a successful login so an earlier typo
// streak doesn't linger against the client.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *Limiter) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, b := range l.buckets {
			if now.After(b.expiresAt) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP resolves the originating client address: the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr without its
// port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
