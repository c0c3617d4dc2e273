package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256SecretLen is the shortest secret we accept. RFC 7518 asks for a
// key at least as long as the hash output.
const MinHS256SecretLen = 32

// HS256Signer signs tokens with a server-held shared secret.
type HS256Signer struct {
	kid    string
	secret []byte
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHS256SecretLen {
		return nil, fmt.Errorf("jwtx: HS256 secret must be at least %d bytes", MinHS256SecretLen)
	}

	// Copy so later mutation of the caller's slice can't change the key.
	key := make([]byte, len(secret))
	copy(key, secret)

	return &HS256Signer{kid: kid, secret: key}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.secret)
}

func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHS256SecretLen {
		return errors.New("jwtx: HS256 secret too short")
	}
	return nil
}

// Verifier returns a verifier that accepts tokens from this signer only.
func (s *HS256Signer) Verifier(issuer string) *HS256Verifier {
	return NewVerifierHS256(s.secret, issuer)
}
