package sqlite

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries { return &queries{db: db} }

func (q *queries) withTx(tx *sql.Tx) *queries { return &queries{db: tx} }

// accountRow mirrors the accounts table column for column.
type accountRow struct {
	ID                      string
	Name                    string
	Email                   string
	PasswordHash            string
	Role                    string
	EmailVerified           bool
	VerificationCode        sql.NullString
	VerificationCodeExpires sql.NullString
	ProfileImage            sql.NullString
	CreatedAt               string
	UpdatedAt               string
}

const accountColumns = `id, name, email, password_hash, role, email_verified,
	verification_code, verification_code_expires, profile_image, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (accountRow, error) {
	var r accountRow
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Email,
		&r.PasswordHash,
		&r.Role,
		&r.EmailVerified,
		&r.VerificationCode,
		&r.VerificationCodeExpires,
		&r.ProfileImage,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

const getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *queries) GetAccountByID(ctx context.Context, id string) (accountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByID, id))
}

const getAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

func (q *queries) GetAccountByEmail(ctx context.Context, email string) (accountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByEmail, email))
}

const createAccount = `INSERT INTO accounts (` + accountColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *queries) CreateAccount(ctx context.Context, r accountRow) error {
	_, err := q.db.ExecContext(ctx, createAccount,
		r.ID,
		r.Name,
		r.Email,
		r.PasswordHash,
		r.Role,
		r.EmailVerified,
		r.VerificationCode,
		r.VerificationCodeExpires,
		r.ProfileImage,
		r.CreatedAt,
		r.UpdatedAt,
	)
	return err
}

const updateAccount = `UPDATE accounts SET
	name = ?,
	password_hash = ?,
	role = ?,
	email_verified = ?,
	verification_code = ?,
	verification_code_expires = ?,
	profile_image = ?,
	updated_at = ?
WHERE id = ?`

func (q *queries) UpdateAccount(ctx context.Context, r accountRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateAccount,
		r.Name,
		r.PasswordHash,
		r.Role,
		r.EmailVerified,
		r.VerificationCode,
		r.VerificationCodeExpires,
		r.ProfileImage,
		r.UpdatedAt,
		r.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const consumeVerificationCode = `UPDATE accounts SET
	verification_code = NULL,
	verification_code_expires = NULL,
	email_verified = 1,
	updated_at = ?
WHERE id = ? AND verification_code = ?`

func (q *queries) ConsumeVerificationCode(ctx context.Context, id, code, now string) (int64, error) {
	res, err := q.db.ExecContext(ctx, consumeVerificationCode, now, id, code)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const clearExpiredVerificationCodes = `UPDATE accounts SET
	verification_code = NULL,
	verification_code_expires = NULL,
	updated_at = ?
WHERE verification_code IS NOT NULL
  AND verification_code_expires IS NOT NULL
  AND verification_code_expires <= ?`

func (q *queries) ClearExpiredVerificationCodes(ctx context.Context, now string) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearExpiredVerificationCodes, now, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countAccounts = `SELECT COUNT(*) FROM accounts`

func (q *queries) CountAccounts(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, countAccounts).Scan(&n)
	return n, err
}

const listAccounts = `SELECT ` + accountColumns + ` FROM accounts
ORDER BY created_at, id
LIMIT ? OFFSET ?`

func (q *queries) ListAccounts(ctx context.Context, limit, offset int) ([]accountRow, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []accountRow
	for rows.Next() {
		r, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
