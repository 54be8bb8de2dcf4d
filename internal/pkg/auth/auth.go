// Package auth parses bearer tokens into the actor principal attached to each
// request. The principal identifies the caller for audit payloads and for the
// idempotency scope; requests on public routes run as the anonymous actor.
package auth

import (
	"context"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"dronedelivery/internal/pkg/errs"
)

// AnonymousActor is the principal of unauthenticated requests on public
// routes.
const AnonymousActor = "anonymous"

// Principal identifies the authenticated caller.
type Principal struct {
	Actor string
	Roles []string
}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from the context. Absent a principal
// the anonymous actor is returned.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Principal{Actor: AnonymousActor}
}

// Verifier validates HMAC-signed bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier over the given signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errs.NewInvalidInputError("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

type tokenClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// ParseAuthorization validates a "Bearer <token>" header value and returns
// the principal it carries. The token subject becomes the actor.
func (v *Verifier) ParseAuthorization(header string) (Principal, error) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return Principal{}, errs.NewInvalidInputError("Authorization header must use the Bearer scheme")
	}
	return v.ParseToken(strings.TrimSpace(token))
}

// ParseToken validates a raw JWT and returns the principal it carries.
func (v *Verifier) ParseToken(token string) (Principal, error) {
	claims := &tokenClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errs.NewInvalidInputError("unexpected token signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, errs.NewInvalidInputErrorWithCause("token is not valid", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Principal{}, errs.NewInvalidInputError("token carries no subject")
	}

	return Principal{Actor: claims.Subject, Roles: claims.Roles}, nil
}
