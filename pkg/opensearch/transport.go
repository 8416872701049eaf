package opensearch

import (
	"net/http"
	"sync/atomic"
)

// roundTripper owns the HTTP transport of a client built by NewManaged.
// It reports failed requests to a late-bound hook and refuses requests once
// closed.
type roundTripper struct {
	next      *http.Transport
	closed    atomic.Bool
	onFailure atomic.Pointer[func()]
}

func newRoundTripper(next *http.Transport) *roundTripper {
	return &roundTripper{next: next}
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.closed.Load() {
		// RoundTrip must close the body even on error.
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, ErrClientClosed
	}

	res, err := t.next.RoundTrip(req)
	if err != nil || isNodeFailure(res.StatusCode) {
		if hook := t.onFailure.Load(); hook != nil {
			(*hook)()
		}
	}
	return res, err
}

// notifyFailures installs fn as the failure hook.
func (t *roundTripper) notifyFailures(fn func()) {
	t.onFailure.Store(&fn)
}

// Close stops accepting requests and drops idle connections.
func (t *roundTripper) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		t.next.CloseIdleConnections()
	}
	return nil
}

// isNodeFailure reports statuses that mark a node as failing rather than the
// request as bad.
func isNodeFailure(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
