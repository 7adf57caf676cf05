package domain

import "time"

// OtpSecret is the TOTP seed issued to a user. Confirmed is set once the
// user has proven possession by submitting a valid code; until then the
// registration is provisional and may be reissued.
type OtpSecret struct {
	UserID    string
	Secret    string // base32 encoded
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
