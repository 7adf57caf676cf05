package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
	"github.com/seulahhh/Fintech-project/pkg/acctnum"
	"github.com/seulahhh/Fintech-project/pkg/idx"
	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// numberRetries bounds regeneration when a generated account number
// collides with an existing one.
const numberRetries = 5

// AccountService owns account creation, listing and soft deletion.
type AccountService struct {
	Store store.Store
}

// Create opens a new account for the identity, subject to the active
// account limit. The account number is generated with a valid check
// character and regenerated on the rare collision.
func (s *AccountService) Create(ctx context.Context, email string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return domain.Account{}, err
	}

	// 1. Enforce the active account cap. Soft-deleted accounts do not
	// count, so closing one frees a slot.
	active, err := s.Store.Accounts().CountActiveByUserID(ctx, user.ID)
	if err != nil {
		return domain.Account{}, domain.ErrIoOperationFailed
	}
	if active >= domain.MaxActiveAccounts {
		return domain.Account{}, domain.ErrAccountLimitExceeded
	}

	// 2. Generate a number and insert, retrying on number collision
	for attempt := 0; attempt < numberRetries; attempt++ {
		number, err := acctnum.Generate()
		if err != nil {
			return domain.Account{}, domain.ErrIoOperationFailed
		}

		account := domain.Account{
			ID:     idx.New().String(),
			UserID: user.ID,
			Number: number,
			Status: domain.AccountActive,
		}

		err = s.Store.Accounts().CreateAccount(ctx, account)
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Info("account number collision, regenerating", slog.String("number", number))
			continue
		}
		if err != nil {
			return domain.Account{}, domain.ErrIoOperationFailed
		}

		return s.Store.Accounts().GetAccountByID(ctx, account.ID)
	}

	return domain.Account{}, domain.ErrIoOperationFailed
}

// Delete soft deletes an account owned by the identity. The account's
// transactions move to archival storage in the same transaction, so the
// live ledger ends empty exactly when the account is disabled.
func (s *AccountService) Delete(ctx context.Context, email, accountID string) (domain.Account, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, domain.ErrIoOperationFailed
	}
	if account.UserID != user.ID {
		return domain.Account{}, domain.ErrAccountUserMismatch
	}
	if !account.Active() {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Transactions().ArchiveByAccountID(ctx, account.ID); err != nil {
			return err
		}
		return tx.Accounts().SoftDelete(ctx, account.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, domain.ErrIoOperationFailed
	}

	return s.Store.Accounts().GetAccountByID(ctx, account.ID)
}

// List returns the identity's live accounts, newest first.
func (s *AccountService) List(ctx context.Context, email string) ([]domain.Account, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	accounts, err := s.Store.Accounts().ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, domain.ErrIoOperationFailed
	}
	return accounts, nil
}

// Get returns one account if it belongs to the identity.
func (s *AccountService) Get(ctx context.Context, email, accountID string) (domain.Account, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, domain.ErrIoOperationFailed
	}
	if account.UserID != user.ID {
		return domain.Account{}, domain.ErrAccountUserMismatch
	}
	return account, nil
}

func (s *AccountService) lookupUser(ctx context.Context, email string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.ErrIoOperationFailed
	}
	return user, nil
}
