package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
)

// pool is the subset of *pgxpool.Pool the store uses. pgxmock's pool
// satisfies it too.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool pool
	url  string
}

// NewStore connects a pgx pool and checks the connection.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", "postgres").Wrap(err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("driver", "postgres").Wrap(err)
	}
	return &Store{pool: p, url: databaseURL}, nil
}

// NewStoreWithPool wraps an existing pool. databaseURL is only needed for
// ApplyMigrations.
func NewStoreWithPool(p pool, databaseURL string) *Store {
	return &Store{pool: p, url: databaseURL}
}

func (s *Store) Accounts() store.Accounts { return &accountsRepo{pool: s.pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// utc normalises a possibly nil time from the driver.
func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

const accountColumns = `id, name, email, password_hash, role, email_verified,
	verification_code, verification_code_expires, profile_image, created_at, updated_at`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a       domain.Account
		role    string
		code    *string
		expires *time.Time
		image   *string
	)
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&role,
		&a.EmailVerified,
		&code,
		&expires,
		&image,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Role = domain.Role(role)
	a.VerificationCode = derefString(code)
	a.VerificationCodeExpires = utc(expires)
	a.ProfileImage = derefString(image)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
