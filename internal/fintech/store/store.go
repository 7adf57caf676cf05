package store

import (
	"context"
	"errors"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	OtpSecrets() OtpSecrets
	Accounts() Accounts
	Transactions() Transactions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Prefer this
	// over Tx for multi-step operations (account deletion with archiving).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the primary lookup during login and token flows.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// MarkEmailVerified flips email_verified and bumps updated_at.
	MarkEmailVerified(ctx context.Context, userID string) error

	// MarkOtpRegistered flips otp_registered and bumps updated_at.
	MarkOtpRegistered(ctx context.Context, userID string) error

	// ClearOtpRegistered reverts otp_registered on secret reset.
	ClearOtpRegistered(ctx context.Context, userID string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to otp_secrets and accounts (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type OtpSecrets interface {
	// GetByUserID returns the secret record for a user.
	GetByUserID(ctx context.Context, userID string) (domain.OtpSecret, error)

	// Upsert inserts or replaces the provisional secret for a user. An
	// already-confirmed secret is never overwritten; Upsert returns
	// ErrAlreadyExists in that case.
	Upsert(ctx context.Context, s domain.OtpSecret) error

	// Confirm marks the secret as proven after a successful code check.
	Confirm(ctx context.Context, userID string) error

	// DeleteByUserID removes the secret, confirmed or not.
	DeleteByUserID(ctx context.Context, userID string) error
}

type Accounts interface {
	// GetAccountByID returns an account by id, deleted or not.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByNumber looks an account up by its public number.
	GetAccountByNumber(ctx context.Context, number string) (domain.Account, error)

	// ListByUserID returns a user's accounts, newest first. Soft-deleted
	// accounts are excluded.
	ListByUserID(ctx context.Context, userID string) ([]domain.Account, error)

	// CountActiveByUserID counts live accounts for the creation limit.
	CountActiveByUserID(ctx context.Context, userID string) (int, error)

	// CreateAccount inserts a new account. Returns ErrAlreadyExists when
	// the generated number collides.
	CreateAccount(ctx context.Context, a domain.Account) error

	// SoftDelete marks the account disabled and stamps deleted_at.
	SoftDelete(ctx context.Context, accountID string) error
}

type Transactions interface {
	// ListByAccountID returns the live ledger for an account, oldest first.
	ListByAccountID(ctx context.Context, accountID string) ([]domain.Transaction, error)

	// CreateTransaction appends to the live ledger.
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// ArchiveByAccountID copies an account's transactions into the archive
	// table and removes them from the live ledger. Returns how many rows
	// moved. Must run inside the same Tx as the account soft delete.
	ArchiveByAccountID(ctx context.Context, accountID string) (int, error)

	// ListArchivedByAccountID returns archived rows, oldest first.
	ListArchivedByAccountID(ctx context.Context, accountID string) ([]domain.ArchivedTransaction, error)
}
