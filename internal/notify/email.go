package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailNotifier delivers notifications over SMTP
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewEmailNotifier(host string, port int, username, password, from, to string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

// RequestPermission is granted whenever a recipient is configured
func (n *EmailNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return n.to != "", nil
}

func (n *EmailNotifier) Notify(ctx context.Context, title, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
