// Package auth verifies the HMAC bearer tokens the API is called with and
// carries the authenticated owner id through the request context. The
// analytics engine never sees a token; it only receives the resolved owner.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey string

const ownerIDKey ctxKey = "owner_id"

// ErrUnauthenticated is returned when no valid owner is in context.
var ErrUnauthenticated = errors.New("not authenticated")

// Verifier validates bearer tokens signed with a shared HMAC secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// OwnerID extracts and validates the owner id from an Authorization header
// value of the form "Bearer <token>".
func (v *Verifier) OwnerID(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("OwnerID: missing bearer token: %w", ErrUnauthenticated)
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("OwnerID: invalid token: %w", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("OwnerID: invalid claims: %w", ErrUnauthenticated)
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("OwnerID: subject missing: %w", ErrUnauthenticated)
	}
	if _, err := uuid.Parse(sub); err != nil {
		return "", fmt.Errorf("OwnerID: subject is not a valid id: %w", ErrUnauthenticated)
	}
	return sub, nil
}

// IssueToken signs a token for ownerID, used by the dev login endpoint and
// tests.
func (v *Verifier) IssueToken(ownerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": ownerID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("IssueToken: %w", err)
	}
	return signed, nil
}

// WithOwnerID returns a context carrying the authenticated owner id.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// OwnerIDFromContext retrieves the authenticated owner id.
func OwnerIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ownerIDKey).(string)
	if !ok || id == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}
