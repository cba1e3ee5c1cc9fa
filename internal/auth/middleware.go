package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/propfind/propfind/internal/platform/httpx"
	"github.com/propfind/propfind/internal/shared"
)

// Authenticator resolves bearer tokens into caller identities. It is the
// single choke point in front of every identity-scoped endpoint.
type Authenticator struct {
	logger *slog.Logger
	codec  *TokenCodec
	now    func() time.Time
}

// NewAuthenticator constructs an Authenticator using the wall clock.
func NewAuthenticator(logger *slog.Logger, codec *TokenCodec) *Authenticator {
	return &Authenticator{logger: logger, codec: codec, now: time.Now}
}

// Authenticate extracts and verifies the bearer token from an Authorization
// header value. Every failure collapses into shared.ErrUnauthenticated; the
// wrapped detail is for logging only and never reaches the client.
func (a *Authenticator) Authenticate(authorization string, now time.Time) (shared.Identity, error) {
	const prefix = "Bearer "
	if authorization == "" || !strings.HasPrefix(authorization, prefix) {
		return shared.Identity{}, fmt.Errorf("%w: missing bearer token", shared.ErrUnauthenticated)
	}
	token := strings.TrimSpace(strings.TrimPrefix(authorization, prefix))
	if token == "" {
		return shared.Identity{}, fmt.Errorf("%w: missing bearer token", shared.ErrUnauthenticated)
	}

	identity, err := a.codec.Verify(token, now)
	if err != nil {
		return shared.Identity{}, fmt.Errorf("%w: %v", shared.ErrUnauthenticated, err)
	}
	return identity, nil
}

// Middleware rejects unauthenticated requests and injects the caller identity
// into the request context for downstream handlers.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.Authenticate(r.Header.Get("Authorization"), a.now())
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("authentication failed",
					slog.String("path", r.URL.Path),
					slog.Any("error", err),
				)
			}
			httpx.Fail(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
