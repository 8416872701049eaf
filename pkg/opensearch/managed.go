package opensearch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/dmitrymomot/searchkit/pkg/lifecycle"
	"github.com/dmitrymomot/searchkit/pkg/logger"
)

// ManagedClient owns an OpenSearch client and its topology refresher and
// releases both when stopped. It is safe for concurrent use.
type ManagedClient struct {
	id                 uuid.UUID
	logger             *slog.Logger
	addresses          []string
	healthcheckOnStart bool

	mu        sync.RWMutex
	client     *opensearch.Client
	discoverer Discoverer
	closer     io.Closer
	refresher  Refresher
	stopped    bool
}

var _ lifecycle.Managed = (*ManagedClient)(nil)

// Option configures a ManagedClient.
type Option func(*ManagedClient)

// WithLogger sets the logger for lifecycle events, refresh results and,
// when enabled, request logging.
func WithLogger(l *slog.Logger) Option {
	return func(m *ManagedClient) {
		if l != nil {
			m.logger = l
		}
	}
}

func newManaged(opts []Option) *ManagedClient {
	m := &ManagedClient{
		id:     uuid.New(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("opensearch"), logger.ClientID(m.id.String()))
	return m
}

// NewManaged builds a client from cfg and, when the sniffer is enabled, the
// refresher that keeps its node list current. A failed build releases
// everything it created.
func NewManaged(ctx context.Context, cfg *Config, opts ...Option) (*ManagedClient, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	refresh, err := cfg.Sniffer.Refresh()
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	m := newManaged(opts)
	b, err := build(ctx, cfg, m.logger)
	if err != nil {
		return nil, err
	}
	m.client = b.client
	m.discoverer = b.discoverer
	m.closer = b.transport
	m.addresses = b.addresses
	m.healthcheckOnStart = cfg.HealthcheckOnStart

	if refresh.Enabled() {
		sn, err := NewSniffer(b.discoverer, refresh, WithSnifferLogger(m.logger))
		if err != nil {
			_ = b.transport.Close()
			return nil, errors.Join(ErrConnectionFailed, err)
		}
		if refresh.OnFailure() {
			b.transport.notifyFailures(sn.NotifyFailure)
		}
		m.refresher = sn
	}

	m.logger.Debug("opensearch client created",
		logger.Nodes(m.addresses),
		logger.Refresh(refresh.String()))
	return m, nil
}

// NewFromClient wraps a client built elsewhere. Stop marks the handle
// closed; the client's transport stays with its creator.
func NewFromClient(client *opensearch.Client, opts ...Option) (*ManagedClient, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	m := newManaged(opts)
	m.client = client
	m.discoverer = client
	return m, nil
}

// NewFromClientWithRefresher wraps a client and the refresher feeding it.
// Stop closes the refresher.
func NewFromClientWithRefresher(client *opensearch.Client, refresher Refresher, opts ...Option) (*ManagedClient, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if refresher == nil {
		return nil, ErrNilRefresher
	}
	m := newManaged(opts)
	m.client = client
	m.discoverer = client
	m.refresher = refresher
	return m, nil
}

// ID identifies this client instance in logs.
func (m *ManagedClient) ID() uuid.UUID { return m.id }

// Start is a no-op beyond logging unless the healthcheck on start is
// enabled; the client is usable as soon as it is built.
func (m *ManagedClient) Start(ctx context.Context) error {
	client, err := m.Client()
	if err != nil {
		return err
	}
	if m.healthcheckOnStart {
		if err := Healthcheck(client)(ctx); err != nil {
			m.logger.ErrorContext(ctx, "opensearch healthcheck on start failed", logger.Error(err))
			return err
		}
	}
	m.logger.InfoContext(ctx, "opensearch client started", logger.Nodes(m.addresses))
	return nil
}

// Stop closes the client, then the refresher. Both are attempted and their
// failures joined. Calling Stop again returns nil.
func (m *ManagedClient) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	closer, refresher := m.closer, m.refresher
	m.mu.Unlock()

	var errs []error
	if closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, errors.Join(ErrCloseClient, err))
		}
	}
	if refresher != nil {
		if err := refresher.Close(); err != nil {
			errs = append(errs, errors.Join(ErrCloseRefresher, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		m.logger.ErrorContext(ctx, "opensearch client stopped with errors", logger.Errors(errs...))
		return err
	}
	m.logger.InfoContext(ctx, "opensearch client stopped")
	return nil
}

// Client returns the underlying client, or ErrClientClosed after Stop.
func (m *ManagedClient) Client() (*opensearch.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return nil, ErrClientClosed
	}
	return m.client, nil
}

// MustClient is like Client but panics after Stop.
func (m *ManagedClient) MustClient() *opensearch.Client {
	client, err := m.Client()
	if err != nil {
		panic(err)
	}
	return client
}

// DiscoverNodes refreshes the node list now. When a node filter is
// configured, nodes missing the filter attribute do not block the discovery
// request itself.
func (m *ManagedClient) DiscoverNodes() error {
	m.mu.RLock()
	d, stopped := m.discoverer, m.stopped
	m.mu.RUnlock()
	if stopped {
		return ErrClientClosed
	}
	return d.DiscoverNodes()
}

// Healthcheck pings the cluster through the managed client.
func (m *ManagedClient) Healthcheck(ctx context.Context) error {
	client, err := m.Client()
	if err != nil {
		return err
	}
	return Healthcheck(client)(ctx)
}
