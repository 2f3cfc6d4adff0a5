package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the process log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger, or slog.Default when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the notification at warn level. It never fails.
func (l *LogNotifier) Send(ctx context.Context, notification Notification) error {
	args := []any{
		"subject", notification.Subject,
		"body", notification.Body,
	}
	for k, v := range notification.Fields {
		args = append(args, k, v)
	}
	l.logger.WarnContext(ctx, "notification", args...)
	return nil
}
