package opensearch

import "errors"

var (
	// ErrNilConfig is returned when NewManaged is called without a configuration.
	ErrNilConfig = errors.New("opensearch config must not be nil")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid opensearch config")

	// ErrNilClient is returned when a nil client is wrapped.
	ErrNilClient = errors.New("opensearch client must not be nil")

	// ErrNilRefresher is returned when a nil refresher is wrapped.
	ErrNilRefresher = errors.New("opensearch refresher must not be nil")

	// ErrConnectionFailed indicates the OpenSearch client could not be created
	// due to configuration or network issues. Use errors.Is() to check.
	ErrConnectionFailed = errors.New("opensearch connection failed")

	// ErrTrustStore indicates the configured trust store could not be loaded.
	ErrTrustStore = errors.New("opensearch trust store could not be loaded")

	// ErrHealthcheckFailed indicates the cluster is unreachable or unhealthy.
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")

	// ErrClientClosed is returned by the accessor and by requests made through
	// a retained client after Stop.
	ErrClientClosed = errors.New("opensearch client is closed")

	// ErrCloseClient wraps a failure to release the client on Stop.
	ErrCloseClient = errors.New("failed to close opensearch client")

	// ErrCloseRefresher wraps a failure to stop the topology refresher on Stop.
	ErrCloseRefresher = errors.New("failed to close opensearch refresher")

	// ErrSnifferCloseTimeout is returned when the sniffer goroutine does not
	// exit within its close timeout.
	ErrSnifferCloseTimeout = errors.New("timeout waiting for opensearch sniffer to stop")
)
