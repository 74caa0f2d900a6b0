package auth

import (
	"errors"
	"fmt"

	"github.com/lostgates/identity/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the platform-wide hashing policy.
const bcryptCost = 12

// HashPassword hashes plaintext with bcrypt. Each call salts anew, so two
// hashes of the same password differ.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares plaintext against a stored digest. A mismatch
// returns common.ErrorInvalidCredentials; a digest bcrypt cannot parse is
// an internal error, kept distinct so it is never mistaken for a wrong
// password.
func CheckPassword(plain, digest string) error {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrorInvalidCredentials
	}
	return fmt.Errorf("%w: malformed password digest", common.ErrorInternal)
}
