// Package models defines the typed records owned by the credential store.
// Fields are explicit; the store boundary rejects anything it does not know.
package models

import "time"

// User is a single account. PasswordHash is a bcrypt digest and is never
// the plaintext. TwoFactorSecret holds the sealed TOTP seed; it is empty
// until the first registration or re-setup generates one, and
// TwoFactorEnabled stays false until the first successful code check.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Role             Role
	DisplayName      string
	SocialLinks      string
	ProfilePicture   string
	IsVerified       bool
	TwoFactorSecret  string
	TwoFactorEnabled bool
	ResetToken       string
	CreatedAt        time.Time
}
