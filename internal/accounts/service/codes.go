package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/mail"
	"github.com/kodefactor/accounts/internal/accounts/metrics"
	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/pkg/cryptox"
	"github.com/kodefactor/accounts/pkg/slogx"
)

const (
	DefaultCodeTTL = 15 * time.Minute

	enqueueTimeout = 2 * time.Second
)

// CodeService owns the verification code lifecycle of an account:
// issue, check and consume.
type CodeService struct {
	Accounts store.Accounts
	Mail     mail.Enqueuer
	TTL      time.Duration
	Now      func() time.Time
	Metrics  *metrics.Metrics
}

func (s *CodeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *CodeService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultCodeTTL
	}
	return s.TTL
}

// Generate returns a fresh six digit code.
func (s *CodeService) Generate() (string, error) {
	return cryptox.GenerateVerificationCode()
}

// Issue stores a new pending code on the account, replacing any previous one,
// and queues the delivery mail. Queueing failures are logged only.
func (s *CodeService) Issue(ctx context.Context, a domain.Account) (domain.Account, error) {
	code, err := s.Generate()
	if err != nil {
		return domain.Account{}, err
	}

	updated, err := s.Accounts.Update(ctx, a.ID, domain.AccountPatch{
		SetCode: &domain.PendingCode{Code: code, ExpiresAt: s.now().UTC().Add(s.ttl())},
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("store verification code: %w", err)
	}
	s.Metrics.RecordCodeIssued()

	s.deliver(ctx, updated.Email, code)
	return updated, nil
}

func (s *CodeService) deliver(ctx context.Context, to, code string) {
	l := slogx.FromContext(ctx)
	if s.Mail == nil {
		l.Warn("no mail queue configured, verification code not sent", slog.String("to", to))
		return
	}

	// The request may finish before the queue answers; the enqueue must not
	// be cut short by that, nor hold the request up for long.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	if err := s.Mail.Enqueue(ctx, mail.VerificationMessage(to, code)); err != nil {
		l.Error("verification mail not queued", slog.String("to", to), slog.Any("err", err))
	}
}

// Check compares submitted with the pending code. The comparison trims
// whitespace and runs in constant time.
func (s *CodeService) Check(a domain.Account, submitted string, now time.Time) error {
	if !cryptox.IsVerificationCode(strings.TrimSpace(submitted)) || !a.HasPendingCode() || !cryptox.CodesEqual(a.VerificationCode, submitted) {
		return ErrInvalidCode
	}
	if a.CodeExpired(now) {
		return ErrCodeExpired
	}
	return nil
}

// Consume clears the pending code and marks the account verified. It only
// succeeds while the stored code is still the one that was checked, so a
// replay or a concurrent resend loses with ErrInvalidCode.
func (s *CodeService) Consume(ctx context.Context, a domain.Account) (domain.Account, error) {
	updated, err := s.Accounts.ConsumeVerificationCode(ctx, a.ID, a.VerificationCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCode
		}
		return domain.Account{}, fmt.Errorf("consume verification code: %w", err)
	}
	return updated, nil
}
