package notification

import (
	"context"
	"log/slog"
)

type Notifier interface {
	SendEmail(ctx context.Context, memberID int64, subject, body string) error
}

// LogNotifier only logs. It stands in when no broker is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendEmail(ctx context.Context, memberID int64, subject, _ string) error {
	n.log.InfoContext(ctx, "email notification", "member_id", memberID, "subject", subject)
	return nil
}
