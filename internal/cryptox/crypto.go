// Package cryptox wraps the credential primitives used by the identity
// layer: bcrypt password hashing and confirmation-code generation.
package cryptox

import (
	"github.com/vaultshare/vaultshare/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// ConfirmationCodeLength is the number of digits in a sign-up
// confirmation code.
const ConfirmationCodeLength = 6

// HashPassword returns the bcrypt hash of the given password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

// CheckPassword reports whether candidate matches the stored bcrypt hash.
func CheckPassword(hash, candidate []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, candidate) == nil
}

// GenerateConfirmationCode returns a random 6-digit sign-up code.
func GenerateConfirmationCode() (string, error) {
	return common.MakeRandDigits(ConfirmationCodeLength)
}
