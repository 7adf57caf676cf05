package mail

import (
	"context"
	"log/slog"

	"github.com/seulahhh/Fintech-project/pkg/slogx"
)

// LogSender writes the message to the log instead of delivering it.
// Used in development and tests.
type LogSender struct{}

func (LogSender) SendVerification(ctx context.Context, to, name, verifyURL string) error {
	slogx.FromContext(ctx).Info("verification mail",
		slog.String("to", to),
		slog.String("name", name),
		slog.String("url", verifyURL),
	)
	return nil
}
