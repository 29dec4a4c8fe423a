package health

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ecairns22/urlwait/internal/service"
	"github.com/sirupsen/logrus"
)

// PollInterval is the fixed pause between connection attempts.
const PollInterval = 1 * time.Second

// Checker polls a TCP address until it accepts connections.
type Checker struct {
	addr     *service.Address
	timeout  time.Duration
	interval time.Duration
	logger   logrus.FieldLogger
}

type Option func(*Checker)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithInterval changes the pause between attempts.
func WithInterval(interval time.Duration) Option {
	return func(c *Checker) {
		c.interval = interval
	}
}

// New creates a Checker for addr. The wait budget is addr.TimeoutSeconds.
func New(addr *service.Address, opts ...Option) *Checker {
	c := &Checker{
		addr:     addr,
		timeout:  time.Duration(addr.TimeoutSeconds) * time.Second,
		interval: PollInterval,
		logger:   quietLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromURL parses rawURL and creates a Checker for it.
func NewFromURL(rawURL string, timeoutSeconds int, opts ...Option) (*Checker, error) {
	addr, err := service.Parse(rawURL, timeoutSeconds)
	if err != nil {
		return nil, err
	}
	return New(addr, opts...), nil
}

// Address returns the target being checked.
func (c *Checker) Address() *service.Address {
	return c.addr
}

// IsAvailable makes a single TCP connection attempt. Connection failures of
// any kind report false; only an unresolvable port is an error.
func (c *Checker) IsAvailable(ctx context.Context) (bool, error) {
	target, err := c.addr.HostPort()
	if err != nil {
		return false, err
	}
	return c.dial(ctx, target) == nil, nil
}

// Wait retries IsAvailable every interval until a connection succeeds or
// the timeout has elapsed. A cancelled ctx ends the loop with ctx.Err().
func (c *Checker) Wait(ctx context.Context) (bool, error) {
	target, err := c.addr.HostPort()
	if err != nil {
		return false, err
	}

	log := c.logger.WithField("target", target)
	start := time.Now()

	err = retry.Do(
		func() error {
			err := c.dial(ctx, target)
			if err != nil && time.Since(start) > c.timeout {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.OnRetry(func(n uint, err error) {
			log.WithField("attempt", n+1).Debugf("not available yet: %v", err)
		}),
		retry.Delay(c.interval), retry.DelayType(retry.FixedDelay),
		retry.Attempts(0), retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err == nil {
		log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("service available")
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debugf("giving up: %v", err)
	return false, nil
}

func (c *Checker) dial(ctx context.Context, target string) error {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = c.interval
	}
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return err
	}
	if err := conn.Close(); err != nil {
		c.logger.WithField("target", target).Warnf("closing probe connection: %v", err)
	}
	return nil
}

// WaitForService waits for host:port to accept TCP connections.
func WaitForService(ctx context.Context, host string, port, timeoutSeconds int) (bool, error) {
	addr, err := service.ForHost(host, port, timeoutSeconds)
	if err != nil {
		return false, err
	}
	return New(addr).Wait(ctx)
}

// WaitForURL waits for the host and port named by a connection URL.
func WaitForURL(ctx context.Context, rawURL string, timeoutSeconds int) (bool, error) {
	c, err := NewFromURL(rawURL, timeoutSeconds)
	if err != nil {
		return false, err
	}
	return c.Wait(ctx)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
