package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []Email
	failures int
	block    chan struct{}
}

func (f *fakeMailer) Send(ctx context.Context, email Email) (string, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return "", errors.New("relay refused")
	}
	f.sent = append(f.sent, email)
	return "<id@test>", nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func validEmail() Email {
	return Email{To: "alice@example.com", Subject: "hi", Text: "hello"}
}

func TestEmail_Validate(t *testing.T) {
	tests := []struct {
		name  string
		email Email
		ok    bool
	}{
		{"text body", Email{To: "a@b.c", Subject: "s", Text: "t"}, true},
		{"html body", Email{To: "a@b.c", Subject: "s", HTML: "<p>t</p>"}, true},
		{"missing to", Email{Subject: "s", Text: "t"}, false},
		{"missing subject", Email{To: "a@b.c", Text: "t"}, false},
		{"missing body", Email{To: "a@b.c", Subject: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.email.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMissingFields)
			}
		})
	}
}

func TestEmail_Recipients(t *testing.T) {
	e := Email{To: "a@x.io, b@y.io,,"}
	assert.Equal(t, []string{"a@x.io", "b@y.io"}, e.Recipients())
}

func TestDispatcher_DeliversAndShutsDown(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	mailer := &fakeMailer{}
	d := NewDispatcher(DispatcherConfig{Workers: 2, QueueSize: 8, Logger: logger}, mailer)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		d.Notify(validEmail())
	}
	require.NoError(t, d.Shutdown(time.Second))

	assert.Equal(t, 5, mailer.count())
	assert.Equal(t, int64(5), d.Stats().Delivered)

	d.Notify(validEmail())
	assert.Equal(t, int64(1), d.Stats().Dropped)
	require.NoError(t, d.Shutdown(time.Second))
}

func TestDispatcher_FailuresAreLoggedNotReturned(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	mailer := &fakeMailer{failures: 1}
	d := NewDispatcher(DispatcherConfig{Workers: 1, Logger: logger}, mailer)
	d.Start(context.Background())

	d.Notify(validEmail())
	require.NoError(t, d.Shutdown(time.Second))

	assert.Equal(t, 0, mailer.count())
	assert.Equal(t, int64(1), d.Stats().Failed)

	var failure *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "failed to deliver notification" {
			failure = e
		}
	}
	require.NotNil(t, failure)
	assert.Equal(t, logrus.ErrorLevel, failure.Level)
	assert.Equal(t, "notifier stopped", hook.LastEntry().Message)
}

func TestDispatcher_Retries(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	mailer := &fakeMailer{failures: 2}
	d := NewDispatcher(DispatcherConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Logger:     logger,
	}, mailer)
	d.Start(context.Background())

	d.Notify(validEmail())
	require.NoError(t, d.Shutdown(time.Second))

	assert.Equal(t, 1, mailer.count())
	assert.Equal(t, int64(1), d.Stats().Delivered)
}

func TestDispatcher_QueueFullDrops(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	mailer := &fakeMailer{}
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1, Logger: logger}, mailer)

	d.Notify(validEmail())
	d.Notify(validEmail())
	assert.Equal(t, int64(1), d.Stats().Dropped)
	assert.Equal(t, 1, d.Stats().Queued)

	d.Start(context.Background())
	require.NoError(t, d.Shutdown(time.Second))
	assert.Equal(t, 1, mailer.count())
}

func TestDispatcher_RejectsInvalidEmail(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	d := NewDispatcher(DispatcherConfig{Logger: logger}, &fakeMailer{})
	d.Notify(Email{To: "a@b.c"})
	assert.Zero(t, d.Stats().Queued)
}

func TestDispatcher_ShutdownTimeout(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	mailer := &fakeMailer{block: make(chan struct{})}
	d := NewDispatcher(DispatcherConfig{Workers: 1, Logger: logger}, mailer)
	d.Start(context.Background())

	d.Notify(validEmail())
	err := d.Shutdown(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrShutdownTimeout)
	assert.Equal(t, int64(1), d.Stats().Failed)
}

func TestResolveRelay(t *testing.T) {
	host, port, err := ResolveRelay("Gmail", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", host)
	assert.Equal(t, 587, port)

	host, port, err = ResolveRelay("gmail", "mail.internal", 2525)
	require.NoError(t, err)
	assert.Equal(t, "mail.internal", host)
	assert.Equal(t, 2525, port)

	_, port, err = ResolveRelay("yahoo", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 465, port)

	_, _, err = ResolveRelay("carrier-pigeon", "", 0)
	assert.Error(t, err)
}

func TestNewSMTPMailer(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Service: "gmail"})
	assert.Error(t, err)

	m, err := NewSMTPMailer(SMTPConfig{Service: "gmail", Username: "app@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "app@example.com", m.from)

	_, id, err := m.buildMessage(Email{To: "bob@example.com", Subject: "s", Text: "t", HTML: "<b>t</b>"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@example.com>"))

	_, _, err = m.buildMessage(Email{To: "bob@example.com"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestTemplates(t *testing.T) {
	welcome, err := WelcomeEmail("alice@example.com", "alice")
	require.NoError(t, err)
	require.NoError(t, welcome.Validate())
	assert.Contains(t, welcome.Text, "Hi alice,")
	assert.Contains(t, welcome.HTML, "<strong>alice</strong>")

	escaped, err := WelcomeEmail("x@example.com", "<script>")
	require.NoError(t, err)
	assert.NotContains(t, escaped.HTML, "<script>")

	at := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	signIn, err := SignInEmail("alice@example.com", "alice", at)
	require.NoError(t, err)
	assert.Contains(t, signIn.Text, "Mar 9, 2024 at 08:30 UTC")

	assert.Equal(t, "bob", DisplayName("", "bob@example.com"))
	assert.Equal(t, "alice", DisplayName("alice", "bob@example.com"))
}
