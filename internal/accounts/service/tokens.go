package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/pkg/jwtx"
)

// TokenService issues and verifies session tokens. It never picks a TTL on
// behalf of a caller that passes one explicitly.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a token for a that expires ttl from now. A ttl of zero or less
// produces a token that is already expired.
func (s *TokenService) Issue(a domain.Account, ttl time.Duration) (string, error) {
	claims := jwtx.NewSessionClaims(a.ID, a.Email, a.Name, a.Role.String(), s.Issuer, ttl, s.now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// IssueSession signs a token with the configured session TTL.
func (s *TokenService) IssueSession(a domain.Account) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	return s.Issue(a, ttl)
}

// Verify checks the signature, algorithm, issuer and expiry of token. Failures
// are one of ErrUnauthenticated, ErrTokenExpired, ErrTokenMalformed or
// ErrTokenInvalid, wrapping the underlying jwtx error.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return jwtx.Claims{}, ErrUnauthenticated
	}

	claims, err := s.Verifier.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrExpired):
			return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		case errors.Is(err, jwtx.ErrMalformed):
			return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		default:
			return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		}
	}
	return claims, nil
}
