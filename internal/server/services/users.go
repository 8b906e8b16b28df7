// Package services contains server-side business logic. This file implements
// UserService, the identity provider: sign-up with confirmation codes,
// sign-in, and issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaultshare/vaultshare/internal/common"
	"github.com/vaultshare/vaultshare/internal/cryptox"
	"github.com/vaultshare/vaultshare/internal/dbx"
	"github.com/vaultshare/vaultshare/internal/logging"
	"github.com/vaultshare/vaultshare/internal/phonex"
	"github.com/vaultshare/vaultshare/internal/server/auth"
	"github.com/vaultshare/vaultshare/internal/server/config"
	"github.com/vaultshare/vaultshare/internal/server/models"
	"github.com/vaultshare/vaultshare/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
//   - SignUp: create an unconfirmed user and issue a confirmation code
//   - ConfirmSignUp / ResendCode: confirmation-code lifecycle
//   - SignIn: verify credentials and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - SignOut: revoke a refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	codeValidityDuration         time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		logger:                       l.With("module", "user_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		codeValidityDuration:         cfg.ConfirmationCodeValidityDuration,
	}
}

// SignUp registers a new, unconfirmed user. The phone number is normalized
// to E.164 and a 6-digit confirmation code is generated. There is no mail
// channel in this deployment, so the code is written to the server log.
func (s *UserService) SignUp(ctx context.Context, email, password, name, phone string) (*models.User, error) {
	email = NormalizeEmail(email)

	normalizedPhone, err := phonex.NormalizeE164(phone)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, common.ErrorInternal
	}

	code, err := cryptox.GenerateConfirmationCode()
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Email:            email,
		Name:             name,
		Phone:            normalizedPhone,
		PasswordHash:     hash,
		ConfirmationCode: code,
		CodeExpiresAt:    time.Now().Add(s.codeValidityDuration),
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "confirmation code issued", "email", email, "code", code)
	return u, nil
}

// ConfirmSignUp verifies the 6-digit code and activates the account.
func (s *UserService) ConfirmSignUp(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	if user.Confirmed {
		return nil
	}
	if user.ConfirmationCode == "" || user.ConfirmationCode != code {
		return common.ErrInvalidCode
	}
	if time.Now().After(user.CodeExpiresAt) {
		return common.ErrCodeExpired
	}

	return repo.Confirm(ctx, email)
}

// ResendCode replaces the pending confirmation code for an unconfirmed user.
func (s *UserService) ResendCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	code, err := cryptox.GenerateConfirmationCode()
	if err != nil {
		return common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.SetConfirmationCode(ctx, email, code, time.Now().Add(s.codeValidityDuration)); err != nil {
		return err
	}

	s.logger.Info(ctx, "confirmation code reissued", "email", email, "code", code)
	return nil
}

// SignIn verifies the password for a confirmed account and, on success,
// returns a new TokenPair.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	email = NormalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.CheckPassword(user.PasswordHash, []byte(password)) {
		return nil, common.ErrorUnauthorized
	}
	if !user.Confirmed {
		return nil, common.ErrNotConfirmed
	}
	return s.generateTokenPair(ctx, user, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut revokes the given refresh token. Revoking an unknown token is
// not an error.
func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// GetByEmail exposes the user lookup for the current-session endpoint.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
}

// GetByID resolves a user by id for token refresh and the current-session
// endpoint.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// NormalizeEmail lowercases and trims an address; used everywhere an email
// is compared, so owner/recipient matching is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- helpers below ---

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
