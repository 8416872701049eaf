package opensearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/searchkit/pkg/nodeselect"
	"github.com/dmitrymomot/searchkit/pkg/truststore"
)

// Config holds OpenSearch client connection parameters.
// Env tags are compatible with github.com/dmitrymomot/searchkit/pkg/config
// (Load and LoadFile); yaml tags follow the keys of the YAML configuration
// file. Zero values leave the client library defaults in place.
type Config struct {
	Addresses []string          `env:"OPENSEARCH_ADDRESSES" yaml:"servers"`
	Headers   map[string]string `env:"OPENSEARCH_HEADERS" yaml:"headers"`

	ConnectTimeout  time.Duration `env:"OPENSEARCH_CONNECT_TIMEOUT" yaml:"connectTimeout"`
	SocketTimeout   time.Duration `env:"OPENSEARCH_SOCKET_TIMEOUT" yaml:"socketTimeout"`
	NumberOfThreads int           `env:"OPENSEARCH_NUMBER_OF_THREADS" yaml:"numberOfThreads"`

	// Node is the preferred value of NodeAttribute. Setting it enables
	// node selection.
	Node                 string `env:"OPENSEARCH_NODE" yaml:"node"`
	NodeAttribute        string `env:"OPENSEARCH_NODE_ATTRIBUTE" envDefault:"rack_id" yaml:"nodeAttribute"`
	MissingNodeAttribute string `env:"OPENSEARCH_NODE_MISSING_ATTRIBUTE" envDefault:"error" yaml:"missingNodeAttribute"`

	BasicAuth BasicAuthConfig `envPrefix:"OPENSEARCH_BASIC_AUTH_" yaml:"basicAuthentication"`
	Keystore  KeystoreConfig  `envPrefix:"OPENSEARCH_KEYSTORE_" yaml:"keystore"`
	Sniffer   SnifferConfig   `envPrefix:"OPENSEARCH_SNIFFER_" yaml:"sniffer"`
	AWS       AWSConfig       `envPrefix:"OPENSEARCH_AWS_" yaml:"aws"`

	MaxRetries          int  `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3" yaml:"maxRetries"`
	DisableRetry        bool `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false" yaml:"disableRetry"`
	CompressRequestBody bool `env:"OPENSEARCH_COMPRESS_REQUEST_BODY" yaml:"compressRequestBody"`

	HealthcheckOnStart bool `env:"OPENSEARCH_HEALTHCHECK_ON_START" yaml:"healthcheckOnStart"`
	LogRequests        bool `env:"OPENSEARCH_LOG_REQUESTS" yaml:"logRequests"`
}

// BasicAuthConfig enables HTTP basic authentication when User is set.
type BasicAuthConfig struct {
	User     string `env:"USER" yaml:"user"`
	Password string `env:"PASSWORD" yaml:"password"`
}

func (c BasicAuthConfig) enabled() bool { return c.User != "" }

// KeystoreConfig names the trust store used to verify cluster certificates.
// It is used when Path is set; Type is PEM, PKCS12 or JKS.
type KeystoreConfig struct {
	Path     string `env:"PATH" yaml:"path"`
	Type     string `env:"TYPE" yaml:"type"`
	Password string `env:"PASSWORD" yaml:"password"`
}

func (c KeystoreConfig) enabled() bool { return c.Path != "" }

// SnifferConfig controls background refresh of the cluster topology.
// When Enabled, the topology is refreshed every Interval. OnFailure adds an
// immediate refresh after a failed request, repeated once after
// FailureDelay. OnFailure without Enabled is rejected.
type SnifferConfig struct {
	Enabled      bool          `env:"ENABLED" yaml:"enabled"`
	OnFailure    bool          `env:"ON_FAILURE" yaml:"sniffOnFailure"`
	Interval     time.Duration `env:"INTERVAL" envDefault:"5m" yaml:"sniffInterval"`
	FailureDelay time.Duration `env:"FAILURE_DELAY" envDefault:"1m" yaml:"sniffAfterFailureDelay"`
}

// Refresh resolves the sniffer settings into a single refresh mode.
func (c SnifferConfig) Refresh() (Refresh, error) {
	if !c.Enabled {
		if c.OnFailure {
			return Refresh{}, errors.New("sniffOnFailure requires the sniffer to be enabled")
		}
		return NoRefresh(), nil
	}
	if c.Interval <= 0 {
		return Refresh{}, fmt.Errorf("sniffer interval must be positive, got %s", c.Interval)
	}
	if !c.OnFailure {
		return RefreshEvery(c.Interval), nil
	}
	if c.FailureDelay <= 0 {
		return Refresh{}, fmt.Errorf("sniffer failure delay must be positive, got %s", c.FailureDelay)
	}
	return RefreshAfterFailure(c.Interval, c.FailureDelay), nil
}

// AWSConfig enables AWS SigV4 request signing when Region is set.
// Static keys are optional; the default AWS credential chain is used
// without them.
type AWSConfig struct {
	Region          string `env:"REGION" yaml:"region"`
	Service         string `env:"SERVICE" envDefault:"es" yaml:"service"`
	AccessKeyID     string `env:"ACCESS_KEY_ID" yaml:"accessKeyId"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY" yaml:"secretAccessKey"`
}

func (c AWSConfig) enabled() bool { return c.Region != "" }

// Validate reports configuration errors joined with ErrInvalidConfig.
// It performs no I/O.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Addresses) == 0 {
		errs = append(errs, errors.New("at least one server address is required"))
	}
	for i, addr := range c.Addresses {
		if addr == "" {
			errs = append(errs, fmt.Errorf("server address %d is empty", i))
		}
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect timeout must not be negative, got %s", c.ConnectTimeout))
	}
	if c.SocketTimeout < 0 {
		errs = append(errs, fmt.Errorf("socket timeout must not be negative, got %s", c.SocketTimeout))
	}
	if c.NumberOfThreads < 0 {
		errs = append(errs, fmt.Errorf("number of threads must not be negative, got %d", c.NumberOfThreads))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries))
	}
	if _, err := nodeselect.ParseMissingPolicy(c.MissingNodeAttribute); err != nil {
		errs = append(errs, err)
	}
	if !c.Keystore.enabled() && (c.Keystore.Type != "" || c.Keystore.Password != "") {
		errs = append(errs, errors.New("keystore type or password given without a path"))
	}
	if c.Keystore.enabled() {
		if _, err := truststore.NormalizeType(c.Keystore.Type); err != nil {
			errs = append(errs, err)
		}
	}
	if c.BasicAuth.enabled() && c.AWS.enabled() {
		errs = append(errs, errors.New("basic authentication and AWS signing are mutually exclusive"))
	}
	if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
		errs = append(errs, errors.New("AWS access key id and secret access key must be set together"))
	}
	if _, err := c.Sniffer.Refresh(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}
