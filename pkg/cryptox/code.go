package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	VerificationCodeMin = 100000
	VerificationCodeMax = 999999
)

var codeSpan = big.NewInt(VerificationCodeMax - VerificationCodeMin + 1)

// GenerateVerificationCode returns a six digit code drawn uniformly from
// [VerificationCodeMin, VerificationCodeMax].
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("cryptox: generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+VerificationCodeMin, 10), nil
}

// IsVerificationCode reports whether s is exactly six ASCII digits.
func IsVerificationCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CodesEqual compares a stored and a submitted code after trimming
// surrounding whitespace. An empty stored code never matches.
func CodesEqual(stored, submitted string) bool {
	stored = strings.TrimSpace(stored)
	submitted = strings.TrimSpace(submitted)
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
