package auth_test

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dronedelivery/internal/pkg/auth"
	"dronedelivery/internal/pkg/errs"
)

const testSecret = "unit-test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifier_ParseAuthorization(t *testing.T) {
	verifier, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)

	t.Run("valid bearer token yields the subject as actor", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":   "operator-42",
			"roles": []string{"operator"},
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		principal, err := verifier.ParseAuthorization("Bearer " + token)

		require.NoError(t, err)
		assert.Equal(t, "operator-42", principal.Actor)
		assert.True(t, principal.HasRole("operator"))
		assert.False(t, principal.HasRole("admin"))
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"sub": "operator-42"})

		_, err := verifier.ParseAuthorization("bearer " + token)

		require.NoError(t, err)
	})

	t.Run("missing scheme is rejected", func(t *testing.T) {
		_, err := verifier.ParseAuthorization("just-a-token")

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token := signToken(t, "some-other-secret", jwt.MapClaims{"sub": "operator-42"})

		_, err := verifier.ParseAuthorization("Bearer " + token)

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "operator-42",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})

		_, err := verifier.ParseAuthorization("Bearer " + token)

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("token without subject is rejected", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"roles": []string{"operator"}})

		_, err := verifier.ParseAuthorization("Bearer " + token)

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestPrincipalContext(t *testing.T) {
	t.Run("round trips through the context", func(t *testing.T) {
		ctx := auth.WithPrincipal(context.Background(), auth.Principal{Actor: "operator-42"})

		assert.Equal(t, "operator-42", auth.FromContext(ctx).Actor)
	})

	t.Run("absent principal is anonymous", func(t *testing.T) {
		assert.Equal(t, auth.AnonymousActor, auth.FromContext(context.Background()).Actor)
	})
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := auth.NewVerifier("")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}
