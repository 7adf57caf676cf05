package sqlite

import (
	"context"
	"database/sql"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, user_id, number, balance, status, created_at, updated_at, deleted_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	var deletedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.UserID, &a.Number, &a.Balance, &a.Status,
		&a.CreatedAt, &a.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.DeletedAt = mapNullTimePtr(deletedAt)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByNumber(ctx context.Context, number string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = ?`, number)
	return scanAccount(row)
}

func (r *accountsRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountsRepo) CountActiveByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts
		 WHERE user_id = ? AND status = ? AND deleted_at IS NULL`,
		userID, domain.AccountActive).Scan(&n)
	return n, err
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, number, balance, status)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Number, a.Balance, a.Status)
	return mapConstraint(err)
}

func (r *accountsRepo) SoftDelete(ctx context.Context, accountID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET status = ?, deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		domain.AccountDisabled, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
