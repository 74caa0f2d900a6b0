// Package auth holds the computational authentication primitives: the JWT
// token service, the bcrypt password hasher, and the TOTP two-factor
// checks. Nothing here touches the credential store.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lostgates/identity/internal/common"
	"github.com/lostgates/identity/internal/server/models"
)

// TokenPurpose restricts what a token is good for. Temporary purposes
// prove a partial authentication step; only PurposeSession grants access
// to protected resources.
type TokenPurpose string

const (
	PurposeSession          TokenPurpose = "session"
	PurposeTwoFactorSetup   TokenPurpose = "2fa_setup"
	PurposeTwoFactorPending TokenPurpose = "2fa_pending"
	PurposePasswordReset    TokenPurpose = "password_reset"
	PurposeEmailVerify      TokenPurpose = "email_verify"
)

// Claims carried by every issued token. Subject is the user id (or the
// email for reset/verification tokens), Role is a snapshot of the user's
// role at issuance time.
type Claims struct {
	jwt.RegisteredClaims
	Role    models.Role  `json:"role,omitempty"`
	Purpose TokenPurpose `json:"purpose,omitempty"`
}

// GenerateToken signs a token with HS256. Tokens are stateless: possession
// of a validly signed, unexpired token is sufficient proof of its claims.
func GenerateToken(subject string, role models.Role, purpose TokenPurpose, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:    role,
		Purpose: purpose,
	})
	return token.SignedString(secret)
}

// ParseToken verifies signature and freshness and returns the claims.
// Expiry maps to common.ErrTokenExpired; any other failure (bad signature,
// malformed structure, wrong algorithm) maps to common.ErrInvalidToken.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
