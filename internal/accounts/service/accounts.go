package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/metrics"
	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/pkg/idx"
	"github.com/kodefactor/accounts/pkg/slogx"
)

const MinPasswordLength = 6

// PasswordHasher is satisfied by cryptox.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// AuthService is the signup/login/verify use-case layer.
type AuthService struct {
	Accounts store.Accounts
	Hasher   PasswordHasher
	Codes    *CodeService
	Tokens   *TokenService
	Gate     *Gate
	Metrics  *metrics.Metrics
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Session is a freshly issued token together with the account it names.
type Session struct {
	Token   string
	Account domain.Account
}

// Signup creates an unverified user account, issues a verification code and
// returns a session token. The store's unique constraint decides duplicate
// emails; the lookup beforehand only saves a password hash on the common path.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (_ Session, err error) {
	defer func() { s.Metrics.RecordAuth("signup", err) }()
	l := slogx.FromContext(ctx)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateSignup(in); err != nil {
		return Session{}, err
	}

	if _, err := s.Accounts.FindByEmail(ctx, in.Email); err == nil {
		return Session{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	a, err := s.create(ctx, in.Name, in.Email, in.Password, domain.RoleUser, false)
	if err != nil {
		return Session{}, err
	}

	a, err = s.Codes.Issue(ctx, a)
	if err != nil {
		return Session{}, err
	}

	token, err := s.Tokens.IssueSession(a)
	if err != nil {
		return Session{}, err
	}

	l.Info("account created", slog.String("account_id", a.ID))
	return Session{Token: token, Account: a}, nil
}

func validateSignup(in SignupInput) error {
	missing := map[string]string{}
	if in.Name == "" {
		missing["name"] = "Name is required"
	}
	if in.Email == "" {
		missing["email"] = "Email is required"
	}
	if in.Password == "" {
		missing["password"] = "Password is required"
	}
	if len(missing) > 0 {
		return invalid("All fields are required", missing)
	}
	if len(in.Password) < MinPasswordLength {
		return invalid("Registration failed", map[string]string{
			"password": fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		})
	}
	return nil
}

func (s *AuthService) create(ctx context.Context, name, email, password string, role domain.Role, verified bool) (domain.Account, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	a, err := s.Accounts.Create(ctx, domain.Account{
		ID:            idx.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: verified,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrDuplicateEmail
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// Login checks the password and issues a session token. An unknown email and
// a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ Session, err error) {
	defer func() { s.Metrics.RecordAuth("login", err) }()
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, invalid("Email and password required", nil)
	}

	a, err := s.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login for unknown email")
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	ok, err := s.Hasher.Verify(password, a.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		l.Info("login password mismatch", slog.String("account_id", a.ID))
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.IssueSession(a)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Account: a}, nil
}

// Verify consumes the pending code for email and returns a fresh session.
func (s *AuthService) Verify(ctx context.Context, email, code string) (_ Session, err error) {
	defer func() { s.Metrics.RecordAuth("verify", err) }()

	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return Session{}, invalid("Email and verification code required", nil)
	}

	a, err := s.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrAccountNotFound
		}
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	if err := s.Codes.Check(a, code, s.Codes.now()); err != nil {
		slogx.FromContext(ctx).Info("verification code rejected",
			slog.String("account_id", a.ID), slog.Any("err", err))
		return Session{}, err
	}

	a, err = s.Codes.Consume(ctx, a)
	if err != nil {
		return Session{}, err
	}

	token, err := s.Tokens.IssueSession(a)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Account: a}, nil
}

// ResendVerification replaces the pending code with a new one and mails it.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (err error) {
	defer func() { s.Metrics.RecordAuth("resend", err) }()

	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("Email is required", map[string]string{"email": "Email is required"})
	}

	a, err := s.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup email: %w", err)
	}
	if a.EmailVerified {
		return ErrAlreadyVerified
	}

	_, err = s.Codes.Issue(ctx, a)
	return err
}

// ValidateSession reports whether token is a live session for an existing
// account.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (_ domain.Account, err error) {
	defer func() { s.Metrics.RecordAuth("validate", err) }()
	return s.Gate.ValidateSession(ctx, token)
}
