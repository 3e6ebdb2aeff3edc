// Package notify sends transactional emails through a mail relay.
package notify

import (
	"context"
	"errors"
	"strings"
)

// ErrMissingFields is returned for an email without a recipient, a subject, or a body.
var ErrMissingFields = errors.New("missing required fields: to, subject, and text/html")

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

func (e Email) Validate() error {
	if strings.TrimSpace(e.To) == "" || strings.TrimSpace(e.Subject) == "" {
		return ErrMissingFields
	}
	if e.Text == "" && e.HTML == "" {
		return ErrMissingFields
	}
	return nil
}

// Recipients splits a comma separated To field.
func (e Email) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(e.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Mailer delivers one email and returns the relay's message id.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

// Notifier queues best-effort notifications. Notify never blocks on delivery
// and never reports delivery failures to the caller.
type Notifier interface {
	Notify(email Email)
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Notify(Email) {}
