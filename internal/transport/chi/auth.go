package chi

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

type ownerKey struct{}

// ContextWithOwner stores the authenticated owner id in the context.
func ContextWithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the authenticated owner id, or "" for anonymous requests.
func OwnerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey{}).(string)
	return id
}

// ownerSlot lets the auth middleware report the owner to the request log line.
type ownerSlot struct{ id string }

type ownerSlotKey struct{}

func contextWithOwnerSlot(ctx context.Context, slot *ownerSlot) context.Context {
	return context.WithValue(ctx, ownerSlotKey{}, slot)
}

// TokenVerifier checks HS256 access tokens issued by the identity provider.
// The subject claim is the owner id.
type TokenVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenVerifier creates a verifier. An empty issuer skips the issuer check.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Verify parses token and returns its subject.
func (v *TokenVerifier) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// JWTAuthMiddleware requires a valid bearer token and stores its subject as the owner id.
func JWTAuthMiddleware(v *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(w, r)
			if !ok {
				return
			}
			if v == nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication is not configured")
				return
			}
			ownerID, err := v.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid token")
				return
			}
			if slot, ok := r.Context().Value(ownerSlotKey{}).(*ownerSlot); ok {
				slot.id = ownerID
			}
			next.ServeHTTP(w, r.WithContext(ContextWithOwner(r.Context(), ownerID)))
		})
	}
}

// BearerAuthMiddleware returns a middleware that validates static Bearer keys.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys = append(validKeys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(w, r)
			if !ok {
				return
			}
			for _, k := range validKeys {
				if subtle.ConstantTimeCompare(k, []byte(token)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
		})
	}
}

// bearerToken extracts the token or writes a 401.
func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing authorization header")
		return "", false
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authorization header must use Bearer scheme")
		return "", false
	}
	return auth[len(bearerPrefix):], true
}
