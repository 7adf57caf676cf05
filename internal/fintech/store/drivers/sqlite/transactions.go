package sqlite

import (
	"context"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
)

type transactionsRepo struct {
	db dbtx
}

func (r *transactionsRepo) ListByAccountID(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, type, amount, balance, created_at
		 FROM transactions WHERE account_id = ?
		 ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Balance, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, type, amount, balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Type, t.Amount, t.Balance, t.CreatedAt)
	return mapConstraint(err)
}

func (r *transactionsRepo) ArchiveByAccountID(ctx context.Context, accountID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO archived_transactions (id, account_id, type, amount, balance, created_at)
		 SELECT id, account_id, type, amount, balance, created_at
		 FROM transactions WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, err
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = ?`, accountID); err != nil {
		return 0, err
	}

	return int(moved), nil
}

func (r *transactionsRepo) ListArchivedByAccountID(ctx context.Context, accountID string) ([]domain.ArchivedTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, type, amount, balance, created_at, archived_at
		 FROM archived_transactions WHERE account_id = ?
		 ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.ArchivedTransaction
	for rows.Next() {
		var t domain.ArchivedTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Balance, &t.CreatedAt, &t.ArchivedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
