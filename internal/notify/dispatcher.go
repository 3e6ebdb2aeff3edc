package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrShutdownTimeout is returned when queued emails were abandoned on shutdown.
var ErrShutdownTimeout = errors.New("dispatcher shutdown timed out")

type DispatcherConfig struct {
	Workers    int
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
	// SendTimeout bounds a single delivery attempt.
	SendTimeout time.Duration
	Logger      *logrus.Logger
}

type Stats struct {
	Queued    int
	Delivered int64
	Failed    int64
	Dropped   int64
}

// Dispatcher delivers notifications on a fixed set of workers. Delivery
// failures are logged and counted, never returned.
type Dispatcher struct {
	cfg    DispatcherConfig
	mailer Mailer
	logger logrus.FieldLogger

	queue  chan Email
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	stats  Stats
}

func NewDispatcher(cfg DispatcherConfig, mailer Mailer) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Dispatcher{
		cfg:    cfg,
		mailer: mailer,
		logger: cfg.Logger.WithField("component", "notifier"),
		queue:  make(chan Email, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Infof("notifier started with %d workers", d.cfg.Workers)
}

func (d *Dispatcher) Notify(email Email) {
	log := d.logger.WithField("subject", email.Subject)
	if err := email.Validate(); err != nil {
		log.WithError(err).Warn("notification rejected")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.stats.Dropped++
		log.Warn("notifier stopped, notification dropped")
		return
	}
	select {
	case d.queue <- email:
	default:
		d.stats.Dropped++
		log.Warn("notification queue full, notification dropped")
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for email := range d.queue {
		d.deliver(id, email)
	}
}

func (d *Dispatcher) deliver(workerID int, email Email) {
	log := d.logger.WithFields(logrus.Fields{"worker": workerID, "subject": email.Subject})

	var err error
	for attempt := 0; ; attempt++ {
		sendCtx, cancel := context.WithTimeout(d.ctx, d.cfg.SendTimeout)
		var id string
		id, err = d.mailer.Send(sendCtx, email)
		cancel()
		if err == nil {
			d.mu.Lock()
			d.stats.Delivered++
			d.mu.Unlock()
			log.WithField("message_id", id).Info("notification delivered")
			return
		}
		if attempt >= d.cfg.MaxRetries || !d.sleep(d.cfg.RetryDelay*time.Duration(attempt+1)) {
			break
		}
		log.WithError(err).Warnf("retrying delivery, attempt %d", attempt+1)
	}

	d.mu.Lock()
	d.stats.Failed++
	d.mu.Unlock()
	log.WithError(err).Error("failed to deliver notification")
}

func (d *Dispatcher) sleep(delay time.Duration) bool {
	select {
	case <-d.ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// Shutdown stops accepting notifications and waits for queued ones up to
// timeout, then cancels in-flight deliveries.
func (d *Dispatcher) Shutdown(timeout time.Duration) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if d.cancel != nil {
			d.cancel()
		}
		d.logger.Info("notifier stopped")
		return nil
	case <-time.After(timeout):
		if d.cancel != nil {
			d.cancel()
		}
		<-done
		return ErrShutdownTimeout
	}
}

func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.Queued = len(d.queue)
	return s
}

var _ Notifier = (*Dispatcher)(nil)
