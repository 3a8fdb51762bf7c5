package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/apperr"
)

var ErrWeakPassword = apperr.Validation("weak_password",
	"password must be at least 8 characters with a digit and a symbol")

// HashPassword produces a salted bcrypt hash at the given cost. Cost 0 falls
// back to the bcrypt default.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash. Any failure, including a
// malformed hash, reads as a mismatch.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePasswordStrength enforces the registration policy: at least 8
// characters, one digit, one symbol.
func ValidatePasswordStrength(plain string) error {
	if len(plain) < 8 {
		return ErrWeakPassword
	}
	var hasDigit, hasSymbol bool
	for _, r := range plain {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !hasDigit || !hasSymbol {
		return ErrWeakPassword
	}
	return nil
}
