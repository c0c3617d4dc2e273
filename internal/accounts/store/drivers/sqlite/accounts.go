package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/store"
)

type accountsRepo struct {
	db *sql.DB
	q  *queries
}

// now drops the monotonic reading so returned values compare equal to what a
// later read parses back.
func now() time.Time { return time.Now().UTC().Round(0) }

func (r *accountsRepo) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := r.q.GetAccountByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	row, err := r.q.GetAccountByID(ctx, id)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	ts := now()
	a.CreatedAt, a.UpdatedAt = ts, ts

	if err := r.q.CreateAccount(ctx, toRow(a)); err != nil {
		return domain.Account{}, mapUniqueViolation(err)
	}
	return a, nil
}

func (r *accountsRepo) Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error) {
	var out domain.Account
	err := withTx(ctx, r.db, r.q, func(q *queries) error {
		row, err := q.GetAccountByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		a := patch.Apply(mapAccount(row))
		a.UpdatedAt = now()

		n, err := q.UpdateAccount(ctx, toRow(a))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}

		out = a
		return nil
	})
	return out, err
}

func (r *accountsRepo) ConsumeVerificationCode(ctx context.Context, id, code string) (domain.Account, error) {
	if code == "" {
		return domain.Account{}, store.ErrNotFound
	}

	var out domain.Account
	err := withTx(ctx, r.db, r.q, func(q *queries) error {
		n, err := q.ConsumeVerificationCode(ctx, id, code, formatTime(now()))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}

		row, err := q.GetAccountByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		out = mapAccount(row)
		return nil
	})
	return out, err
}

func (r *accountsRepo) ClearExpiredVerificationCodes(ctx context.Context, at time.Time) (int64, error) {
	return r.q.ClearExpiredVerificationCodes(ctx, formatTime(at))
}

func (r *accountsRepo) Count(ctx context.Context) (int, error) {
	return r.q.CountAccounts(ctx)
}

func (r *accountsRepo) ListPage(ctx context.Context, offset, limit int) ([]domain.AccountSummary, error) {
	rows, err := r.q.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AccountSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapAccount(row).Summary())
	}
	return out, nil
}
