// Package cryptox seals short secrets with AES-GCM before they are handed
// to the credential store. The identity service uses it to keep TOTP seeds
// opaque at rest: the store only ever sees the sealed form.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var errMalformedSealed = errors.New("malformed sealed value")

// DeriveKey derives a 32-byte AES-256 key from an arbitrary-length secret.
func DeriveKey(secret []byte) []byte {
	key := sha256.Sum256(secret)
	return key[:]
}

// SealString encrypts plaintext with AES-GCM under key and returns
// base64(nonce || ciphertext). A fresh 12-byte nonce is generated per call.
func SealString(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString. It fails when the value was sealed under
// a different key or has been tampered with.
func OpenString(sealed string, key []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errMalformedSealed
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errMalformedSealed
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
