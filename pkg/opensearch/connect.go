package opensearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/signer/awsv2"

	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/nodeselect"
	"github.com/dmitrymomot/searchkit/pkg/truststore"
)

// New creates a new OpenSearch client and verifies the cluster is reachable.
// The caller owns the returned client; use NewManaged to have its resources
// released by a lifecycle host.
func New(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := build(ctx, &cfg, logger.Discard())
	if err != nil {
		return nil, err
	}

	// Healthcheck
	if err := Healthcheck(b.client)(ctx); err != nil {
		_ = b.transport.Close()
		return nil, err
	}
	return b.client, nil
}

// builder is the mutable state the build steps apply to, in order.
type builder struct {
	cfg    *Config
	logger *slog.Logger

	client    opensearch.Config
	transport *http.Transport
	dialer    *net.Dialer
	selector  *nodeSelector
}

// buildStep applies one configuration concern to the builder. Steps run in
// the order returned by buildSteps and see the state left by earlier steps.
type buildStep func(ctx context.Context, b *builder) error

func buildSteps(cfg *Config) []buildStep {
	steps := []buildStep{withAddresses, withTimeouts}
	if len(cfg.Headers) > 0 {
		steps = append(steps, withHeaders)
	}
	if cfg.NumberOfThreads > 0 {
		steps = append(steps, withThreads)
	}
	if cfg.Node != "" {
		steps = append(steps, withNodeSelector)
	}
	if cfg.BasicAuth.enabled() {
		steps = append(steps, withBasicAuth)
	}
	if cfg.Keystore.enabled() {
		steps = append(steps, withTrustStore)
	}
	if cfg.AWS.enabled() {
		steps = append(steps, withAWSSigner)
	}
	steps = append(steps, withRetries)
	if cfg.LogRequests {
		steps = append(steps, withRequestLogging)
	}
	return steps
}

// built is the product of a successful build.
type built struct {
	client     *opensearch.Client
	transport  *roundTripper
	discoverer Discoverer
	addresses  []string
}

func build(ctx context.Context, cfg *Config, log *slog.Logger) (*built, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	b := &builder{
		cfg:       cfg,
		logger:    log,
		transport: transport,
		dialer:    dialer,
	}
	for _, step := range buildSteps(cfg) {
		if err := step(ctx, b); err != nil {
			return nil, err
		}
	}

	rt := newRoundTripper(b.transport)
	b.client.Transport = rt

	client, err := opensearch.NewClient(b.client)
	if err != nil {
		_ = rt.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	var d Discoverer = client
	if b.selector != nil {
		d = discoverFunc(func() error { return b.selector.discover(client) })
	}
	return &built{client: client, transport: rt, discoverer: d, addresses: b.client.Addresses}, nil
}

func withAddresses(_ context.Context, b *builder) error {
	addrs := make([]string, 0, len(b.cfg.Addresses))
	for _, a := range b.cfg.Addresses {
		addrs = append(addrs, normalizeAddress(a))
	}
	b.client.Addresses = addrs
	return nil
}

// normalizeAddress turns a bare host:port into an http URL.
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.Contains(addr, "://") {
		return addr
	}
	return "http://" + addr
}

func withTimeouts(_ context.Context, b *builder) error {
	if d := b.cfg.ConnectTimeout; d > 0 {
		b.dialer.Timeout = d
	}
	if d := b.cfg.SocketTimeout; d > 0 {
		b.transport.ResponseHeaderTimeout = d
	}
	return nil
}

func withHeaders(_ context.Context, b *builder) error {
	h := make(http.Header, len(b.cfg.Headers))
	for name, value := range b.cfg.Headers {
		h.Set(name, value)
	}
	b.client.Header = h
	return nil
}

// withThreads bounds connection concurrency per node, the transport-level
// equivalent of an I/O thread count.
func withThreads(_ context.Context, b *builder) error {
	n := b.cfg.NumberOfThreads
	b.transport.MaxConnsPerHost = n
	b.transport.MaxIdleConnsPerHost = n
	return nil
}

func withNodeSelector(_ context.Context, b *builder) error {
	policy, err := nodeselect.ParseMissingPolicy(b.cfg.MissingNodeAttribute)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	attr := b.cfg.NodeAttribute
	if attr == "" {
		attr = nodeselect.DefaultAttribute
	}
	sel, err := nodeselect.New(b.cfg.Node,
		nodeselect.WithAttribute(attr),
		nodeselect.WithMissingPolicy(policy),
	)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	b.selector = newNodeSelector(sel)
	b.client.Selector = b.selector
	return nil
}

func withBasicAuth(_ context.Context, b *builder) error {
	b.client.Username = b.cfg.BasicAuth.User
	b.client.Password = b.cfg.BasicAuth.Password
	return nil
}

func withTrustStore(_ context.Context, b *builder) error {
	ks := b.cfg.Keystore
	pool, err := truststore.Load(ks.Path, ks.Type, ks.Password)
	if err != nil {
		return errors.Join(ErrTrustStore, err)
	}
	b.transport.TLSClientConfig = truststore.TLSConfig(pool)
	return nil
}

func withAWSSigner(ctx context.Context, b *builder) error {
	awsCfg, err := loadAWSConfig(ctx, b.cfg.AWS)
	if err != nil {
		return errors.Join(ErrConnectionFailed, err)
	}
	service := b.cfg.AWS.Service
	if service == "" {
		service = "es"
	}
	signer, err := awsv2.NewSignerWithService(awsCfg, service)
	if err != nil {
		return errors.Join(ErrConnectionFailed, fmt.Errorf("create aws signer: %w", err))
	}
	b.client.Signer = signer
	return nil
}

func loadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func withRetries(_ context.Context, b *builder) error {
	b.client.MaxRetries = b.cfg.MaxRetries
	b.client.DisableRetry = b.cfg.DisableRetry
	b.client.CompressRequestBody = b.cfg.CompressRequestBody
	return nil
}

func withRequestLogging(_ context.Context, b *builder) error {
	b.client.Logger = transportLogger{log: b.logger.With(logger.Component("opensearch.transport"))}
	return nil
}
