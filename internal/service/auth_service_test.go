package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestAuth() (AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthService(repo, testSecret, time.Hour, zap.NewNop()), repo
}

func TestSignUp(t *testing.T) {
	auth, _ := newTestAuth()
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "  Runner@Example.com ", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "runner@example.com", user.Email)
	require.Empty(t, user.PasswordHash)
	require.False(t, user.ID.IsZero())

	_, err = auth.SignUp(ctx, "runner@example.com", "another1")
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = auth.SignUp(ctx, "not-an-email", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.SignUp(ctx, "short@example.com", "12345")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInAndValidate(t *testing.T) {
	auth, _ := newTestAuth()
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = auth.SignIn(ctx, "a@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.SignIn(ctx, "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	token, user, err := auth.SignIn(ctx, "A@example.com", "hunter22")
	require.NoError(t, err)
	require.Empty(t, user.PasswordHash)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), claims.UserID)
	require.NotEmpty(t, claims.ID)

	current, err := auth.CurrentUser(ctx, claims.UserID)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", current.Email)

	_, err = auth.CurrentUser(ctx, "bogus")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateToken_Rejects(t *testing.T) {
	auth, _ := newTestAuth()

	_, err := auth.ValidateToken("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "abc",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "abc",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err = expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignOutRevokesAndNotifies(t *testing.T) {
	auth, _ := newTestAuth()
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	var events []AuthEvent
	unsubscribe := auth.OnAuthStateChanged(func(ev AuthEvent) { events = append(events, ev) })

	token, user, err := auth.SignIn(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, auth.SignOut(ctx, token))

	_, err = auth.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.Equal(t, []AuthEvent{
		{Type: AuthSignedIn, UserID: user.ID.Hex()},
		{Type: AuthSignedOut, UserID: user.ID.Hex()},
	}, events)

	// A revoked token cannot sign out twice.
	require.ErrorIs(t, auth.SignOut(ctx, token), ErrInvalidToken)

	unsubscribe()
	_, _, err = auth.SignIn(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)
	require.Len(t, events, 2)
}
