package domain

import "time"

type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionTransfer TransactionType = "TRANSFER"
)

type Transaction struct {
	ID        string
	AccountID string
	Type      TransactionType
	Amount    int64 // minor currency units
	Balance   int64 // balance after this transaction
	CreatedAt time.Time
}

// ArchivedTransaction is a transaction moved out of the live ledger when
// its account is soft deleted. ArchivedAt records when the move happened.
type ArchivedTransaction struct {
	Transaction
	ArchivedAt time.Time
}
