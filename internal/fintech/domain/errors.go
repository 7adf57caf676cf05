package domain

import "net/http"

// Error is a domain-level failure with a stable machine-readable code.
// Handlers map Kind onto an HTTP status and serialise Code plus Detail.
type Error struct {
	Kind   ErrorKind
	Code   string
	Detail string
}

type ErrorKind int

const (
	// KindInvalid covers malformed or rejected requests (bad input,
	// business rule violations).
	KindInvalid ErrorKind = iota
	// KindUnauthorized covers failed or missing authentication.
	KindUnauthorized
	// KindInternal covers infrastructure failures the caller cannot fix.
	KindInternal
)

func (e *Error) Error() string { return e.Detail }

// HTTPStatus returns the response status for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Sentinel domain errors. Compared with errors.Is, so services return these
// directly rather than wrapping fresh instances.
var (
	ErrUserNotFound      = &Error{KindInvalid, "AUTH-001", "user not found"}
	ErrEmailAlreadyExist = &Error{KindInvalid, "AUTH-002", "email already registered"}
	ErrEmailNotVerified  = &Error{KindUnauthorized, "AUTH-003", "email not verified"}
	ErrTokenNotFound     = &Error{KindUnauthorized, "AUTH-004", "refresh token not found"}
	ErrTokenExpired      = &Error{KindUnauthorized, "AUTH-005", "token expired"}
	ErrInvalidToken      = &Error{KindUnauthorized, "AUTH-006", "invalid token"}
	ErrOwnerMismatch     = &Error{KindUnauthorized, "AUTH-007", "token does not belong to user"}
	ErrLoginFailed       = &Error{KindUnauthorized, "AUTH-008", "invalid email or password"}

	ErrInvalidOtpCode       = &Error{KindUnauthorized, "OTP-001", "invalid otp code"}
	ErrOtpAttemptExceeded   = &Error{KindUnauthorized, "OTP-002", "otp attempt limit exceeded"}
	ErrOtpSecretNotFound    = &Error{KindInvalid, "OTP-003", "otp secret not registered"}
	ErrOtpNotRegistered     = &Error{KindUnauthorized, "OTP-004", "otp registration not completed"}
	ErrOtpAlreadyRegistered = &Error{KindInvalid, "OTP-005", "otp already registered"}

	ErrAccountNotFound      = &Error{KindInvalid, "ACCOUNT-001", "account not found"}
	ErrAccountLimitExceeded = &Error{KindInvalid, "ACCOUNT-002", "active account limit reached"}
	ErrAccountUserMismatch  = &Error{KindInvalid, "ACCOUNT-003", "account does not belong to user"}

	ErrIoOperationFailed = &Error{KindInternal, "IO-001", "storage operation failed"}
)
