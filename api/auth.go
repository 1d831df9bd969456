/*
auth.go - JWT authentication and actor extraction

PURPOSE:

	Issues and validates the bearer tokens used by every /api route except
	token issuance itself. A validated token becomes a booking.Actor stored
	on the request context; handlers read it back with ActorFrom.

TOKENS:

	HS256, 24h expiry. Claims carry the user id and role so authorization
	decisions never need a user lookup on the hot path.
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/voyago/booking-engine/booking"
)

type actorKey struct{}

// Claims is the JWT payload.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates API tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: 24 * time.Hour}
}

// CreateToken issues a signed token for the user.
func (t *TokenIssuer) CreateToken(userID booking.UserID, role booking.Role) (string, error) {
	claims := Claims{
		UserID: string(userID),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses and verifies a token string.
func (t *TokenIssuer) Validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// resulting actor on the context.
func (t *TokenIssuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims, err := t.Validate(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		actor := booking.Actor{
			UserID: booking.UserID(claims.UserID),
			Role:   booking.Role(claims.Role),
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor stores an actor on the context. Exported for tests.
func WithActor(ctx context.Context, actor booking.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom extracts the authenticated actor from the request context.
func ActorFrom(ctx context.Context) (booking.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(booking.Actor)
	return actor, ok
}
