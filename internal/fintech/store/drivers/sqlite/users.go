package sqlite

import (
	"context"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, email, phone, password_hash, email_verified, otp_registered, created_at, updated_at`

func (r *usersRepo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.EmailVerified, &u.OtpRegistered, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return r.scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, phone, password_hash, email_verified, otp_registered)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.EmailVerified, u.OtpRegistered)
	return mapConstraint(err)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.touch(ctx,
		`UPDATE users SET email_verified = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID)
}

func (r *usersRepo) MarkOtpRegistered(ctx context.Context, userID string) error {
	return r.touch(ctx,
		`UPDATE users SET otp_registered = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID)
}

func (r *usersRepo) ClearOtpRegistered(ctx context.Context, userID string) error {
	return r.touch(ctx,
		`UPDATE users SET otp_registered = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.touch(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newHash, userID)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return r.touch(ctx, `DELETE FROM users WHERE id = ?`, userID)
}

// touch runs a mutation that must hit exactly one row.
func (r *usersRepo) touch(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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
