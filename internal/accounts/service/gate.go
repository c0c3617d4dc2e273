package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
)

// Gate is the store-backed session check used by the validate endpoint.
// Unlike the bearer middleware it also rejects tokens whose account no
// longer exists and, when RequireVerified is set, unverified accounts.
type Gate struct {
	Accounts        store.Accounts
	Tokens          *TokenService
	RequireVerified bool
}

func (g *Gate) ValidateSession(ctx context.Context, token string) (domain.Account, error) {
	claims, err := g.Tokens.Verify(token)
	if err != nil {
		return domain.Account{}, err
	}

	a, err := g.Accounts.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("load session account: %w", err)
	}

	if g.RequireVerified && !a.EmailVerified {
		return domain.Account{}, ErrEmailNotVerified
	}
	return a, nil
}
