package store

import (
	"context"
	"errors"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Every mutation is persisted before the call returns; there
// is no caching layer in front of it.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Accounts interface {
	// FindByEmail matches the email exactly as stored.
	FindByEmail(ctx context.Context, email string) (domain.Account, error)

	FindByID(ctx context.Context, id string) (domain.Account, error)

	// Create inserts a new account (id is provided by app via ULID) and sets
	// the timestamps. A duplicate email fails with ErrAlreadyExists; the
	// unique constraint is the authority, not a pre-check.
	Create(ctx context.Context, a domain.Account) (domain.Account, error)

	// Update applies patch inside a single transaction and bumps updated_at.
	Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error)

	// ConsumeVerificationCode clears the pending code and marks the account
	// verified, but only while the stored code still equals code. A lost race
	// or replay yields ErrNotFound.
	ConsumeVerificationCode(ctx context.Context, id, code string) (domain.Account, error)

	// ClearExpiredVerificationCodes drops pending codes whose expiry is at or
	// before now and returns how many accounts were touched.
	ClearExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error)

	Count(ctx context.Context) (int, error)

	// ListPage returns summaries ordered by created_at, id.
	ListPage(ctx context.Context, offset, limit int) ([]domain.AccountSummary, error)
}
