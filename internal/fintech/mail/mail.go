// Package mail sends transactional email. Delivery is behind an
// interface so tests and local development run without an external
// provider.
package mail

import "context"

// Sender delivers transactional messages.
type Sender interface {
	// SendVerification emails the recipient a link containing their
	// verification token.
	SendVerification(ctx context.Context, to, name, verifyURL string) error
}
