package domain

type Role string

const (
	// RolePending is assigned until both email verification and OTP
	// registration have completed.
	RolePending Role = "PENDING"
	// RoleUser is a fully onboarded member.
	RoleUser Role = "USER"
	// RoleAdmin is reserved for operational tooling.
	RoleAdmin Role = "ADMIN"
)

// RoleFor derives the role from onboarding state. Both steps must be done
// before a user is promoted; either one alone keeps them pending.
func RoleFor(emailVerified, otpRegistered bool) Role {
	if emailVerified && otpRegistered {
		return RoleUser
	}
	return RolePending
}

func (r Role) String() string { return string(r) }
