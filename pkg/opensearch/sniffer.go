package opensearch

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/searchkit/pkg/logger"
)

// Discoverer refreshes the set of nodes a client talks to.
// *opensearch.Client implements it.
type Discoverer interface {
	DiscoverNodes() error
}

// Refresher is a background component released on Stop.
type Refresher interface {
	Close() error
}

// SnifferOption configures a Sniffer.
type SnifferOption func(*Sniffer)

// WithSnifferLogger sets the logger used for refresh results.
func WithSnifferLogger(l *slog.Logger) SnifferOption {
	return func(s *Sniffer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCloseTimeout bounds how long Close waits for an in-flight refresh.
func WithCloseTimeout(d time.Duration) SnifferOption {
	return func(s *Sniffer) {
		if d > 0 {
			s.closeTimeout = d
		}
	}
}

// Sniffer keeps a client's node list current in the background.
// It refreshes once when created, then according to its Refresh mode.
// Refreshes never overlap.
type Sniffer struct {
	discoverer   Discoverer
	refresh      Refresh
	logger       *slog.Logger
	closeTimeout time.Duration

	failures  chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	sniffs atomic.Uint64
}

// NewSniffer starts refreshing d according to refresh.
func NewSniffer(d Discoverer, refresh Refresh, opts ...SnifferOption) (*Sniffer, error) {
	if d == nil {
		return nil, ErrNilClient
	}
	if !refresh.Enabled() {
		return nil, errors.New("sniffer requires a refresh mode")
	}
	if refresh.Interval() <= 0 {
		return nil, errors.New("sniffer interval must be positive")
	}
	if refresh.OnFailure() && refresh.FailureDelay() <= 0 {
		return nil, errors.New("sniffer failure delay must be positive")
	}

	s := &Sniffer{
		discoverer:   d,
		refresh:      refresh,
		logger:       logger.Discard(),
		closeTimeout: 10 * time.Second,
		failures:     make(chan struct{}, 1),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s, nil
}

// NotifyFailure triggers an immediate refresh followed by another one after
// the failure delay. Notifications arriving while a refresh runs are covered
// by it and dropped. It never blocks and is a no-op in interval mode.
func (s *Sniffer) NotifyFailure() {
	if !s.refresh.OnFailure() {
		return
	}
	select {
	case s.failures <- struct{}{}:
	default:
	}
}

// Sniffs returns how many refreshes have succeeded.
func (s *Sniffer) Sniffs() uint64 {
	return s.sniffs.Load()
}

// Close stops the background goroutine and waits for it to exit.
// Calling Close more than once returns the first result.
func (s *Sniffer) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		select {
		case <-s.done:
			s.logger.Debug("opensearch sniffer stopped")
		case <-time.After(s.closeTimeout):
			s.closeErr = ErrSnifferCloseTimeout
			s.logger.Warn("timeout waiting for opensearch sniffer to stop",
				logger.Duration(s.closeTimeout))
		}
	})
	return s.closeErr
}

func (s *Sniffer) run() {
	defer close(s.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-timer.C:
			s.sniff()
			timer.Reset(s.refresh.Interval())
		case <-s.failures:
			s.sniff()
			s.dropFailures()
			timer.Reset(s.refresh.FailureDelay())
		}
	}
}

// dropFailures discards notifications raised while a refresh was running,
// including those caused by the discovery request itself.
func (s *Sniffer) dropFailures() {
	select {
	case <-s.failures:
	default:
	}
}

func (s *Sniffer) sniff() {
	start := time.Now()
	if err := s.discoverer.DiscoverNodes(); err != nil {
		s.logger.Warn("opensearch node discovery failed",
			logger.Error(err),
			logger.Refresh(s.refresh.String()))
		return
	}
	s.sniffs.Add(1)
	s.logger.Debug("opensearch nodes discovered",
		logger.Refresh(s.refresh.String()),
		logger.Duration(time.Since(start)))
}
