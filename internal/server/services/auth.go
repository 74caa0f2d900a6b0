// Package services contains server-side business logic. This file
// implements AuthService, which orchestrates registration, the
// two-phase TOTP login, token refresh, and the password-reset and
// email-verification flows over the credential store.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/cryptox"
	"github.com/lostgates/identity/internal/dbx"
	"github.com/lostgates/identity/internal/server/auth"
	"github.com/lostgates/identity/internal/server/config"
	"github.com/lostgates/identity/internal/server/models"
	"github.com/lostgates/identity/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived session token and a long-lived,
// server-stored refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegistrationResult is returned by Register. The QR code and manual key
// exist only in this response; the stored secret is sealed.
type RegistrationResult struct {
	User       *models.User
	QRCode     string
	ManualKey  string
	SetupToken string
}

// LoginResult is the outcome of the first login phase. Exactly one of
// RequiresSetup / RequiresTwoFactor is true, and TemporaryToken carries
// the matching restricted purpose. No session token is ever issued here.
type LoginResult struct {
	TemporaryToken    string
	RequiresSetup     bool
	RequiresTwoFactor bool
}

// TwoFactorSetupResult carries fresh enrollment material after a re-setup.
type TwoFactorSetupResult struct {
	QRCode    string
	ManualKey string
}

// AuthService provides the authentication operations:
// - Register: create users with a sealed TOTP secret
// - Login: verify credentials, hand out a restricted temporary token
// - CompleteTwoFactorLogin: verify the code and mint the session pair
// - Refresh: rotate refresh tokens and mint new session tokens
// - password reset and email verification round-trips
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	sealKey                      []byte
	totpIssuer                   string
	accessTokenValidityDuration  time.Duration
	setupTokenValidityDuration   time.Duration
	pendingTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server
// config. The TOTP sealing key is derived from the signing secret.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		sealKey:                      cryptox.DeriveKey([]byte(cfg.SecretKey)),
		totpIssuer:                   cfg.TOTPIssuer,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		setupTokenValidityDuration:   cfg.SetupTokenValidityDuration,
		pendingTokenValidityDuration: cfg.PendingTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account. Uniqueness is checked before the
// password is hashed so a doomed request never pays the bcrypt cost; the
// unique indexes remain the authority when a concurrent insert races past
// these checks. The new account starts with two-factor disabled and a
// sealed secret already provisioned, so the response can carry the QR
// code and a short-lived setup token.
func (s *AuthService) Register(ctx context.Context, username, email, password, role string) (*RegistrationResult, error) {
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrorUsernameExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorEmailExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	key, err := auth.GenerateTOTPKey(s.totpIssuer, email)
	if err != nil {
		return nil, common.ErrorInternal
	}
	sealed, err := cryptox.SealString(key.Secret(), s.sealKey)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		Role:            parsedRole,
		TwoFactorSecret: sealed,
	}
	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	qr, err := auth.TOTPQRCode(key)
	if err != nil {
		return nil, common.ErrorInternal
	}
	setupToken, err := auth.GenerateToken(created.ID, created.Role, auth.PurposeTwoFactorSetup, s.jwtSecret, s.setupTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &RegistrationResult{
		User:       created,
		QRCode:     qr,
		ManualKey:  key.Secret(),
		SetupToken: setupToken,
	}, nil
}

// Login runs the first authentication phase. Unknown username and wrong
// password both yield ErrorInvalidCredentials. A successful check issues
// a temporary token only: purpose 2fa_setup when the account has not
// completed enrollment, 2fa_pending otherwise.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	if !user.TwoFactorEnabled {
		token, err := auth.GenerateToken(user.ID, user.Role, auth.PurposeTwoFactorSetup, s.jwtSecret, s.setupTokenValidityDuration)
		if err != nil {
			return nil, common.ErrorInternal
		}
		return &LoginResult{TemporaryToken: token, RequiresSetup: true}, nil
	}

	token, err := auth.GenerateToken(user.ID, user.Role, auth.PurposeTwoFactorPending, s.jwtSecret, s.pendingTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &LoginResult{TemporaryToken: token, RequiresTwoFactor: true}, nil
}

// TwoFactorSetup provisions a fresh secret for an existing account,
// replacing any previous one and disabling two-factor until the next
// successful confirmation. Losing the old authenticator is the expected
// reason to land here.
func (s *AuthService) TwoFactorSetup(ctx context.Context, userID string) (*TwoFactorSetupResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := auth.GenerateTOTPKey(s.totpIssuer, user.Email)
	if err != nil {
		return nil, common.ErrorInternal
	}
	sealed, err := cryptox.SealString(key.Secret(), s.sealKey)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := repo.SetTwoFactorSecret(ctx, user.ID, sealed); err != nil {
		return nil, err
	}

	qr, err := auth.TOTPQRCode(key)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TwoFactorSetupResult{QRCode: qr, ManualKey: key.Secret()}, nil
}

// ConfirmTwoFactorSetup verifies a first code against the stored secret
// and enables two-factor. The token must carry the 2fa_setup or session
// purpose. No session token is issued; the client logs in again.
func (s *AuthService) ConfirmTwoFactorSetup(ctx context.Context, tokenString, code string) error {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return err
	}
	if claims.Purpose != auth.PurposeTwoFactorSetup && claims.Purpose != auth.PurposeSession {
		return common.ErrInvalidTokenPurpose
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return err
	}

	secret, err := cryptox.OpenString(user.TwoFactorSecret, s.sealKey)
	if err != nil {
		return common.ErrorInternal
	}
	if !auth.VerifyTOTPCode(secret, code) {
		return common.ErrorInvalidCode
	}

	return repo.EnableTwoFactor(ctx, user.ID)
}

// CompleteTwoFactorLogin finishes the second login phase: a valid
// 2fa_pending token plus a correct code yields the session TokenPair.
// The role baked into the session token is re-read from the store, not
// taken from the pending token.
func (s *AuthService) CompleteTwoFactorLogin(ctx context.Context, tokenString, code string) (*TokenPair, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != auth.PurposeTwoFactorPending {
		return nil, common.ErrInvalidTokenPurpose
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, err
	}

	secret, err := cryptox.OpenString(user.TwoFactorSecret, s.sealKey)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !auth.VerifyTOTPCode(secret, code) {
		return nil, common.ErrorInvalidCode
	}

	return s.generateTokenPair(ctx, user, s.db)
}

// Refresh validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired;
// unknown tokens are indistinguishable from invalid ones.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// ForgotPassword issues a password-reset token bound to the email and
// persists it so the reset is single-use. The token is returned to the
// caller; delivering it by email belongs to an external collaborator.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(email, "", auth.PurposePasswordReset, s.jwtSecret, s.resetTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	if err := repo.UpdateResetToken(ctx, email, token); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token. Besides signature and purpose, the
// token must textually match the stored reset_token; the match is cleared
// together with the password update so the token cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return err
	}
	if claims.Purpose != auth.PurposePasswordReset {
		return common.ErrInvalidTokenPurpose
	}
	email := claims.Subject

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(user.ResetToken), []byte(tokenString)) != 1 {
		return common.ErrResetTokenMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)
		if err := repoTx.UpdatePassword(ctx, email, hash); err != nil {
			return err
		}
		return repoTx.UpdateResetToken(ctx, email, "")
	})
}

// RequestEmailVerification issues an email_verify token bound to the
// address. Like reset tokens, dispatch is external.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	if _, err := s.repomanager.Users(s.db).GetByEmail(ctx, email); err != nil {
		return "", err
	}
	token, err := auth.GenerateToken(email, "", auth.PurposeEmailVerify, s.jwtSecret, s.resetTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// ConfirmEmailVerification consumes an email_verify token and marks the
// account verified.
func (s *AuthService) ConfirmEmailVerification(ctx context.Context, tokenString string) error {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return err
	}
	if claims.Purpose != auth.PurposeEmailVerify {
		return common.ErrInvalidTokenPurpose
	}
	return s.repomanager.Users(s.db).SetVerified(ctx, claims.Subject, true)
}

// RecoverUsername returns the username recorded for an account id.
func (s *AuthService) RecoverUsername(ctx context.Context, userID string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// --- helpers below ---

func (s *AuthService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Role, auth.PurposeSession, s.jwtSecret, s.accessTokenValidityDuration)
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
