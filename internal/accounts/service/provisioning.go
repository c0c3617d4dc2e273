package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// CreateUser provisions an account with any role. It is the only path to an
// admin or backenduser account and is reachable from the CLI, not HTTP.
// Provisioned accounts start verified.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (domain.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !in.Role.Valid() {
		return domain.Account{}, fmt.Errorf("%w: %q", domain.ErrUnknownRole, in.Role)
	}

	if err := validateSignup(SignupInput{Name: in.Name, Email: in.Email, Password: in.Password}); err != nil {
		return domain.Account{}, err
	}

	if _, err := s.Accounts.FindByEmail(ctx, in.Email); err == nil {
		return domain.Account{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("lookup email: %w", err)
	}

	return s.create(ctx, in.Name, in.Email, in.Password, in.Role, true)
}
