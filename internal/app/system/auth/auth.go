// Package auth resolves the request principal from the identity token and
// guards routes.
//
// The token travels either as a Bearer header (API clients) or inside the
// session cookie set at login (the browser dashboard). LoadPrincipal
// verifies it, cross-checks the user record (status, token epoch), merges
// the profile's locality attributes, and injects a principal.Principal
// into the request context. Policy code never touches global state; it
// reads the principal from the context it is handed.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/vendaops/contratohub/internal/app/system/autherrors"
	"github.com/vendaops/contratohub/internal/app/system/principal"
	"github.com/vendaops/contratohub/internal/app/system/roles"
	"github.com/vendaops/contratohub/internal/app/system/token"
	"github.com/vendaops/contratohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const tokenKey = "identity_token"

type ctxKey string

const currentPrincipalKey ctxKey = "currentPrincipal"

// ProfileFetcher loads the profile record for a verified token subject.
// Implemented by the user store; kept as an interface so middleware tests
// can stub it.
type ProfileFetcher interface {
	FetchByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// SessionManager verifies identity tokens and manages the cookie that
// carries them for browser clients.
type SessionManager struct {
	tokens  *token.Manager
	store   *sessions.CookieStore
	name    string
	fetcher ProfileFetcher
	log     *zap.Logger
}

// NewSessionManager builds the session manager. An empty sessionKey gets a
// random one, which is fine for dev but logs a warning because it
// invalidates all cookies on restart.
func NewSessionManager(tokens *token.Manager, sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	key := []byte(sessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("no session key configured; generated an ephemeral one")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	}
	store.Options = opts

	return &SessionManager{tokens: tokens, store: store, name: sessionName, log: logger}, nil
}

// SetFetcher wires the profile store. Called once from bootstrap after the
// database connection exists.
func (sm *SessionManager) SetFetcher(f ProfileFetcher) { sm.fetcher = f }

// SetSession writes the identity token into the browser cookie.
func (sm *SessionManager) SetSession(w http.ResponseWriter, r *http.Request, tok string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[tokenKey] = tok
	return sess.Save(r, w)
}

// ClearSession drops the cookie.
func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Options.MaxAge = -1
	delete(sess.Values, tokenKey)
	return sess.Save(r, w)
}

// requestToken pulls the raw token from the Authorization header or, for
// browser requests, from the session cookie. Header wins.
func (sm *SessionManager) requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return ""
	}
	tok, _ := sess.Values[tokenKey].(string)
	return tok
}

// LoadPrincipal verifies the request's identity token and injects the
// resolved principal into context. Requests without a valid token continue
// unauthenticated; RequireSignedIn or RequireRole reject them later.
//
// Resolution is fail-closed at every step: a token whose user no longer
// exists, is disabled, or whose epoch predates a role change authenticates
// nobody. The role always comes from the token claim; the profile record
// contributes locality attributes only. A missing profile record yields a
// principal with empty locality, which locality-scoped roles then see as a
// deny-all scope.
func (sm *SessionManager) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := sm.requestToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := sm.tokens.Verify(raw)
		if err != nil {
			sm.log.Debug("identity token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		uid, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			sm.log.Warn("identity token has malformed subject", zap.String("sub", claims.UserID))
			next.ServeHTTP(w, r)
			return
		}

		p := principal.Principal{UserID: uid, Email: claims.Email, Role: claims.Role}

		if sm.fetcher != nil {
			u, err := sm.fetcher.FetchByID(r.Context(), uid)
			switch {
			case err != nil:
				// Can't prove the account is still in good standing.
				sm.log.Error("profile fetch failed during principal resolution", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			case u == nil:
				// No profile record: the token still authenticates the
				// user, but locality stays empty and scoped roles will
				// resolve to deny-all.
				sm.log.Warn("no profile record for token subject", zap.String("user_id", uid.Hex()))
			case u.Status == "disabled":
				next.ServeHTTP(w, r)
				return
			case u.TokenEpoch != claims.Epoch:
				// Role changed since this token was issued.
				next.ServeHTTP(w, r)
				return
			default:
				p.Nome = u.Nome
				p.City = u.City
				p.State = u.State
				p.Region = u.Region
				if p.Email == "" {
					p.Email = u.Email
				}
			}
		}

		next.ServeHTTP(w, withPrincipal(r, p))
	})
}

// CurrentPrincipal returns the resolved principal and a found flag.
func CurrentPrincipal(r *http.Request) (principal.Principal, bool) {
	p, ok := r.Context().Value(currentPrincipalKey).(principal.Principal)
	return p, ok
}

// RequireSignedIn rejects unauthenticated requests with 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only the given roles through, 403 otherwise.
// An unauthenticated request gets 401 so clients can distinguish the two.
func (sm *SessionManager) RequireRole(allowed ...roles.Role) func(http.Handler) http.Handler {
	set := make(map[roles.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentPrincipal(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, has := set[p.Role]; !has {
				writeJSONError(w, http.StatusForbidden, autherrors.ErrAuthorization.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestPrincipal injects a principal directly. Test helper only.
func WithTestPrincipal(r *http.Request, p principal.Principal) *http.Request {
	return withPrincipal(r, p)
}

func withPrincipal(r *http.Request, p principal.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentPrincipalKey, p))
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":` + `"` + msg + `"}`))
}
