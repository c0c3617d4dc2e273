package postgres

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
)

type accountsRepo struct {
	pool pool
}

// Postgres keeps microseconds.
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func (r *accountsRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	ts := now()
	a.CreatedAt, a.UpdatedAt = ts, ts

	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID,
		a.Name,
		a.Email,
		a.PasswordHash,
		string(a.Role),
		a.EmailVerified,
		optString(a.VerificationCode),
		a.VerificationCodeExpires,
		optString(a.ProfileImage),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapUniqueViolation(err)
	}
	return a, nil
}

// Update locks the row for the duration of the read-modify-write.
func (r *accountsRepo) Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Account{}, oops.With("operation", "begin update").Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanAccount(tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a := patch.Apply(current)
	a.UpdatedAt = now()

	tag, err := tx.Exec(ctx,
		`UPDATE accounts SET
			name = $2,
			password_hash = $3,
			role = $4,
			email_verified = $5,
			verification_code = $6,
			verification_code_expires = $7,
			profile_image = $8,
			updated_at = $9
		 WHERE id = $1`,
		a.ID,
		a.Name,
		a.PasswordHash,
		string(a.Role),
		a.EmailVerified,
		optString(a.VerificationCode),
		a.VerificationCodeExpires,
		optString(a.ProfileImage),
		a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, oops.With("operation", "update account", "id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Account{}, store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Account{}, oops.With("operation", "commit update").Wrap(err)
	}
	return a, nil
}

func (r *accountsRepo) ConsumeVerificationCode(ctx context.Context, id, code string) (domain.Account, error) {
	if code == "" {
		return domain.Account{}, store.ErrNotFound
	}

	a, err := scanAccount(r.pool.QueryRow(ctx,
		`UPDATE accounts SET
			verification_code = NULL,
			verification_code_expires = NULL,
			email_verified = TRUE,
			updated_at = $3
		 WHERE id = $1 AND verification_code = $2
		 RETURNING `+accountColumns,
		id, code, now()))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) ClearExpiredVerificationCodes(ctx context.Context, at time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET
			verification_code = NULL,
			verification_code_expires = NULL,
			updated_at = $2
		 WHERE verification_code IS NOT NULL
		   AND verification_code_expires IS NOT NULL
		   AND verification_code_expires <= $1`,
		at.UTC(), now())
	if err != nil {
		return 0, oops.With("operation", "clear expired codes").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func (r *accountsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, oops.With("operation", "count accounts").Wrap(err)
	}
	return n, nil
}

func (r *accountsRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.AccountSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, oops.With("operation", "list accounts").Wrap(err)
	}
	defer rows.Close()

	out := make([]domain.AccountSummary, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, oops.With("operation", "scan account row").Wrap(err)
		}
		out = append(out, a.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate accounts").Wrap(err)
	}
	return out, nil
}

