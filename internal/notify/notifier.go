// Package notify reports failed publishes and job cycles to the operator.
package notify

import (
	"context"
	"errors"
)

// Notification represents a notification message.
type Notification struct {
	Subject string
	Body    string
	Fields  map[string]string
}

// Notifier is the interface for sending notifications.
type Notifier interface {
	// Send sends a notification.
	Send(ctx context.Context, notification Notification) error
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, notification Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
