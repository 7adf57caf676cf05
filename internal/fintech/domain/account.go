package domain

import "time"

type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountDisabled AccountStatus = "DISABLED"
)

// MaxActiveAccounts caps how many live accounts a user may hold at once.
// Soft-deleted accounts do not count against the limit.
const MaxActiveAccounts = 3

type Account struct {
	ID        string
	UserID    string
	Number    string // "177" + 8 digits + modulo-11 check character
	Balance   int64  // minor currency units
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (a Account) Active() bool { return a.Status == AccountActive }
