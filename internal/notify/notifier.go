// Package notify is the notification authority boundary: permission
// requests and fire-and-forget delivery, with no confirmation channel
// back to the caller.
package notify

import (
	"context"
	"log"
)

// Notifier is the external notification collaborator
type Notifier interface {
	// RequestPermission asks for consent to notify. Denial is an
	// expected answer, not an error; callers may re-request later.
	RequestPermission(ctx context.Context) (bool, error)

	// Notify delivers a notification. Fire-and-forget: there is no
	// delivery confirmation.
	Notify(ctx context.Context, title, body string) error
}

// LogNotifier writes notifications to the process log. Permission is
// a config switch, standing in for the OS consent prompt.
type LogNotifier struct {
	Enabled bool
}

func NewLogNotifier(enabled bool) *LogNotifier {
	return &LogNotifier{Enabled: enabled}
}

func (n *LogNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return n.Enabled, nil
}

func (n *LogNotifier) Notify(ctx context.Context, title, body string) error {
	log.Printf("notification: %s - %s", title, body)
	return nil
}
