package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new hashes.
const PasswordCost = 12

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePasswordStrength validates password strength
func ValidatePasswordStrength(password string) (bool, []string) {
	var problems []string

	if len(password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		problems = append(problems, "Password must be at most 72 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		problems = append(problems, "Password must contain at least one letter")
	}
	if !hasDigit {
		problems = append(problems, "Password must contain at least one digit")
	}

	return len(problems) == 0, problems
}

// NormalizeStudentID upper-cases and trims a student id so "s1001 " and
// "S1001" name the same account.
func NormalizeStudentID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
