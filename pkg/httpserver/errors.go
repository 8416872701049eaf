package httpserver

import "errors"

var (
	// ErrStart indicates that the server or one of its managed components
	// failed to start.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown, or stopping a managed
	// component, failed.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
	// ErrAlreadyRunning is returned by Run when the server is already running.
	ErrAlreadyRunning = errors.New("server already running")
)
