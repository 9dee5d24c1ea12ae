package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassphrase returns a bcrypt hash of the admin passphrase. A value that is
// already a bcrypt hash is returned as is, so the env may carry either form.
func HashPassphrase(passphrase string) (string, error) {
	if IsBcryptHash(passphrase) {
		return passphrase, nil
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassphrase compares a bcrypt hash with its possible plaintext equivalent.
func CheckPassphrase(hashed, passphrase string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(passphrase)) == nil
}

func IsBcryptHash(value string) bool {
	if len(value) != 60 {
		return false
	}
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
