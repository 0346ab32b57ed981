package utils

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 8

// HashPassword returns the bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword rejects passwords that are too short or entirely numeric.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return errors.New("password is too short: it must contain at least 8 characters")
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return errors.New("password is entirely numeric")
}
