package services

import (
	"context"
	"testing"

	"github.com/offcampus/rollcall/internal/client/store"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewAuthService(st.Accounts, nil)
}

func TestSignUpAndLogin(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	acct, err := svc.SignUp(ctx, "  alice  ", "hunter22", "Alice Tan")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Username)
	assert.NotEmpty(t, acct.ID)
	assert.Len(t, acct.Salt, 16)
	assert.Len(t, acct.PasswordHash, 32)

	got, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
}

func TestSignUp_Validation(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	tests := []struct {
		name                            string
		username, password, displayName string
	}{
		{"empty username", "", "hunter22", "Alice"},
		{"blank username", "   ", "hunter22", "Alice"},
		{"empty display name", "alice", "hunter22", ""},
		{"short password", "alice", "12345", "Alice"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tc.username, tc.password, tc.displayName)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "hunter22", "Alice Tan")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "alice", "other-pass", "Another Alice")
	require.ErrorIs(t, err, common.ErrorUsernameTaken)
}

func TestLogin_GenericErrorOnMissAndMismatch(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "hunter22", "Alice Tan")
	require.NoError(t, err)

	// unknown username and wrong password must be indistinguishable
	_, missErr := svc.Login(ctx, "bob", "hunter22")
	_, mismatchErr := svc.Login(ctx, "alice", "wrong-pass")

	require.ErrorIs(t, missErr, common.ErrorInvalidCredentials)
	require.ErrorIs(t, mismatchErr, common.ErrorInvalidCredentials)
	assert.Equal(t, missErr.Error(), mismatchErr.Error())
}
