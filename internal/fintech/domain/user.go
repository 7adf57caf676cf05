package domain

import "time"

type User struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	PasswordHash  string // argon2 encoded
	EmailVerified bool
	OtpRegistered bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Role returns the effective role derived from the verification state.
func (u User) Role() Role {
	return RoleFor(u.EmailVerified, u.OtpRegistered)
}
