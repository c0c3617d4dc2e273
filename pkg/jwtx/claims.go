package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token unless the caller
// configures otherwise.
const DefaultSessionTTL = time.Hour

// Claims are the session token claims. The account id is carried both as
// "sub" and as "id" so browser code that reads the payload keeps working.
type Claims struct {
	jwt.RegisteredClaims

	AccountID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

// NewSessionClaims builds claims for an account session. A ttl of zero or
// less yields a token that is already expired.
func NewSessionClaims(accountID, email, name, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		AccountID: accountID,
		Email:     email,
		Name:      name,
		Role:      role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.validateExpiryAt(time.Now().UTC(), 0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	return c.validateExpiryAt(time.Now().UTC(), leeway)
}

func (c *Claims) validateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateSubject makes sure the token names the account it was issued for.
func (c *Claims) ValidateSubject() error {
	if c.Subject == "" || (c.AccountID != "" && c.AccountID != c.Subject) {
		return ErrInvalidClaim
	}
	return nil
}
