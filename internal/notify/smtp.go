package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	// Service is a well-known provider name used when Host is empty.
	Service  string
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type relay struct {
	host string
	port int
}

var wellKnownServices = map[string]relay{
	"gmail":   {host: "smtp.gmail.com", port: 587},
	"outlook": {host: "smtp-mail.outlook.com", port: 587},
	"hotmail": {host: "smtp-mail.outlook.com", port: 587},
	"yahoo":   {host: "smtp.mail.yahoo.com", port: 465},
	"icloud":  {host: "smtp.mail.me.com", port: 587},
}

// ResolveRelay returns the relay host and port, preferring explicit values
// over the service table.
func ResolveRelay(service, host string, port int) (string, int, error) {
	if host != "" {
		if port == 0 {
			port = 587
		}
		return host, port, nil
	}
	r, ok := wellKnownServices[strings.ToLower(strings.TrimSpace(service))]
	if !ok {
		return "", 0, fmt.Errorf("unknown mail service %q and no host configured", service)
	}
	if port != 0 {
		r.port = port
	}
	return r.host, r.port, nil
}

// SMTPMailer relays email through an SMTP server.
type SMTPMailer struct {
	cfg  SMTPConfig
	host string
	port int
	from string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	host, port, err := ResolveRelay(cfg.Service, cfg.Host, cfg.Port)
	if err != nil {
		return nil, err
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	if from == "" {
		return nil, fmt.Errorf("mail sender is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{cfg: cfg, host: host, port: port, from: from}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) (string, error) {
	msg, id, err := m.buildMessage(email)
	if err != nil {
		return "", err
	}

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTimeout(m.cfg.Timeout),
	}
	if m.port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return "", fmt.Errorf("create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("send mail: %w", err)
	}
	return id, nil
}

func (m *SMTPMailer) buildMessage(email Email) (*mail.Msg, string, error) {
	if err := email.Validate(); err != nil {
		return nil, "", err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, "", fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(email.Recipients()...); err != nil {
		return nil, "", fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(email.Subject)

	id := messageID(m.from)
	msg.SetMessageIDWithValue(id)
	msg.SetDate()

	switch {
	case email.Text != "" && email.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.Text != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	default:
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	}
	return msg, "<" + id + ">", nil
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = strings.TrimSuffix(from[at+1:], ">")
	}
	return uuid.NewString() + "@" + domain
}

var _ Mailer = (*SMTPMailer)(nil)
