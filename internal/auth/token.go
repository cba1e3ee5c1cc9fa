package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/propfind/propfind/internal/shared"
)

// Token verification failures. The HTTP layer collapses all of them into a
// single unauthenticated response; the distinction exists for logging.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrBadSignature   = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is the self-contained session payload. The token is the only carrier
// of session state; there is no server-side session store.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// TokenCodec issues and verifies signed session tokens. The signing secret is
// injected once at construction and never changes for the process lifetime;
// rotating it invalidates every outstanding token.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec constructs a TokenCodec.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl}
}

// Issue builds a signed HS256 token for the identity, valid from now until
// now plus the configured TTL.
func (c *TokenCodec) Issue(userID int64, email string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
		Email:  email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks structure, signature, and expiry of a token against the given
// clock and returns the embedded identity.
func (c *TokenCodec) Verify(token string, now time.Time) (shared.Identity, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return shared.Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return shared.Identity{}, ErrBadSignature
		default:
			return shared.Identity{}, ErrTokenMalformed
		}
	}
	if claims.UserID <= 0 || claims.Email == "" {
		return shared.Identity{}, ErrTokenMalformed
	}
	return shared.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
