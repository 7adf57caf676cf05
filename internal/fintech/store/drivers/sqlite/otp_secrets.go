package sqlite

import (
	"context"

	"github.com/seulahhh/Fintech-project/internal/fintech/domain"
	"github.com/seulahhh/Fintech-project/internal/fintech/store"
)

type otpSecretsRepo struct {
	db dbtx
}

func (r *otpSecretsRepo) GetByUserID(ctx context.Context, userID string) (domain.OtpSecret, error) {
	var s domain.OtpSecret
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, secret, confirmed, created_at, updated_at
		 FROM otp_secrets WHERE user_id = ?`, userID).
		Scan(&s.UserID, &s.Secret, &s.Confirmed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.OtpSecret{}, mapNotFound(err)
	}
	return s, nil
}

func (r *otpSecretsRepo) Upsert(ctx context.Context, s domain.OtpSecret) error {
	// A confirmed secret must not be silently replaced; the caller has to
	// go through an explicit reset first.
	existing, err := r.GetByUserID(ctx, s.UserID)
	if err == nil && existing.Confirmed {
		return store.ErrAlreadyExists
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO otp_secrets (user_id, secret, confirmed)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			secret = excluded.secret,
			confirmed = excluded.confirmed,
			updated_at = CURRENT_TIMESTAMP`,
		s.UserID, s.Secret, s.Confirmed)
	return err
}

func (r *otpSecretsRepo) Confirm(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE otp_secrets SET confirmed = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`, userID)
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

func (r *otpSecretsRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otp_secrets WHERE user_id = ?`, userID)
	return err
}
