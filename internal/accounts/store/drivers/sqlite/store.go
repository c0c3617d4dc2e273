package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
)

// timeLayout is fixed width so that text comparison in SQL orders the same
// way as the instants do.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db  *sql.DB
	q   *queries
	dsn string
}

// DSN builds a modernc connection string for a database file with the
// pragmas the store relies on.
func DSN(file string) string {
	return "file:" + file + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

// NewStore opens the database. The pool is limited to one connection, which
// serialises writers and keeps ":memory:" databases alive across calls.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Code("DB_OPEN_FAILED").With("driver", "sqlite").Wrap(err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, oops.Code("DB_OPEN_FAILED").With("driver", "sqlite").Wrap(err)
	}

	return &Store{
		db:  db,
		q:   newQueries(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Accounts() store.Accounts { return &accountsRepo{db: s.db, q: s.q} }

// withTx executes fn within a transaction, automatically handling commit/rollback.
func withTx(ctx context.Context, db *sql.DB, q *queries, fn func(q *queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Safe to call even after commit.
	defer func() { _ = tx.Rollback() }()

	if err := fn(q.withTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUniqueViolation(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return store.ErrAlreadyExists
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func mapOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func mapAccount(row accountRow) domain.Account {
	return domain.Account{
		ID:                      row.ID,
		Name:                    row.Name,
		Email:                   row.Email,
		PasswordHash:            row.PasswordHash,
		Role:                    domain.Role(row.Role),
		EmailVerified:           row.EmailVerified,
		VerificationCode:        mapNullString(row.VerificationCode),
		VerificationCodeExpires: mapNullTimePtr(row.VerificationCodeExpires),
		ProfileImage:            mapNullString(row.ProfileImage),
		CreatedAt:               parseTime(row.CreatedAt),
		UpdatedAt:               parseTime(row.UpdatedAt),
	}
}

func toRow(a domain.Account) accountRow {
	return accountRow{
		ID:                      a.ID,
		Name:                    a.Name,
		Email:                   a.Email,
		PasswordHash:            a.PasswordHash,
		Role:                    string(a.Role),
		EmailVerified:           a.EmailVerified,
		VerificationCode:        mapStringNull(a.VerificationCode),
		VerificationCodeExpires: mapOptionalTime(a.VerificationCodeExpires),
		ProfileImage:            mapStringNull(a.ProfileImage),
		CreatedAt:               formatTime(a.CreatedAt),
		UpdatedAt:               formatTime(a.UpdatedAt),
	}
}
