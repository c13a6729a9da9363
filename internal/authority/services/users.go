// Package services holds the authority's business logic between the HTTP
// handlers and the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/offcampus/rollcall/internal/authority/auth"
	"github.com/offcampus/rollcall/internal/authority/models"
	"github.com/offcampus/rollcall/internal/authority/repositories/refreshtokens"
	"github.com/offcampus/rollcall/internal/authority/repositories/repomanager"
	"github.com/offcampus/rollcall/internal/common"
	"github.com/offcampus/rollcall/internal/cryptox"
	"github.com/offcampus/rollcall/internal/dbx"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	jwtSecret []byte,
	accessValidity, refreshValidity time.Duration,
) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    jwtSecret,
		accessTokenValidityDuration:  accessValidity,
		refreshTokenValidityDuration: refreshValidity,
	}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, common.ErrorValidation
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	hash := cryptox.HashPassword([]byte(password), salt)

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login authenticates and returns a fresh token pair. A missing user and a
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return nil, common.ErrorInvalidCredentials
	}

	return s.generateTokenPair(ctx, s.repomanager.RefreshTokens(s.db), user.ID)
}

// RefreshToken rotates the pair: the presented refresh token is deleted and
// a new pair issued in one transaction, so a stolen token works at most
// once.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var tokenPair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		if err := repo.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		tokenPair, err = s.generateTokenPair(ctx, repo, token.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, tokenRepo refreshtokens.Repository, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := tokenRepo.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccessToken returns the user id the access token was issued for.
func (s *UserService) VerifyAccessToken(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}
