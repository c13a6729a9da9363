package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/offcampus/rollcall/internal/client/models"
	"github.com/offcampus/rollcall/internal/client/repositories/accounts"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/cryptox"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// AuthService handles local (offline) account creation and login.
type AuthService struct {
	accounts accounts.Repository
	now      Clock
}

func NewAuthService(accountRepo accounts.Repository, now Clock) *AuthService {
	if now == nil {
		now = SystemClock
	}
	return &AuthService{accounts: accountRepo, now: now}
}

// SignUp creates a local account. The password is salted and hashed before
// storage; the raw bytes never touch the database. Sign-up conflicts are
// reported specifically (common.ErrorUsernameTaken) because a new user
// needs to pick a different name.
func (a *AuthService) SignUp(ctx context.Context, username, password, displayName string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	displayName = strings.TrimSpace(displayName)

	if username == "" || displayName == "" {
		return nil, fmt.Errorf("%w: username and display name are required", common.ErrorValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	hash := cryptox.HashPassword([]byte(password), salt)

	acct := &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    a.now(),
	}

	if err := a.accounts.Insert(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Login verifies a username/password pair against the local store. Misses
// and mismatches both return common.ErrorInvalidCredentials so usernames
// cannot be enumerated.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)

	acct, err := a.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !cryptox.VerifyPassword([]byte(password), acct.Salt, acct.PasswordHash) {
		return nil, common.ErrorInvalidCredentials
	}
	return acct, nil
}
