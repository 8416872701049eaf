package opensearch_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeNode describes one entry of a fake /_nodes/http response. An empty
// rack leaves the rack_id attribute out.
type fakeNode struct {
	id      string
	address string
	rack    string
}

// fakeCluster is an httptest server answering the endpoints the client
// needs: the info endpoint and node discovery.
type fakeCluster struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	nodes    []fakeNode
	status   int
}

func newFakeCluster(t *testing.T) *fakeCluster {
	t.Helper()
	c := &fakeCluster{status: http.StatusOK}
	c.Server = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.Close)
	return c
}

func (c *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.requests = append(c.requests, r.Clone(r.Context()))
	nodes := c.nodes
	status := c.status
	c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/":
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, `{"name":"fake","cluster_name":"test","version":{"number":"2.11.0","distribution":"opensearch"},"tagline":"The OpenSearch Project"}`)
	case "/_nodes/http":
		out := map[string]any{}
		for _, n := range nodes {
			attrs := map[string]any{}
			if n.rack != "" {
				attrs["rack_id"] = n.rack
			}
			out[n.id] = map[string]any{
				"name":       n.id,
				"roles":      []string{"data", "ingest"},
				"attributes": attrs,
				"http":       map[string]any{"publish_address": n.address},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"nodes": out})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"error":"not found"}`)
	}
}

func (c *fakeCluster) host() string {
	return strings.TrimPrefix(c.URL, "http://")
}

func (c *fakeCluster) setStatus(status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

func (c *fakeCluster) setNodes(nodes ...fakeNode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = nodes
}

// hits counts recorded requests for path.
func (c *fakeCluster) hits(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.requests {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

func (c *fakeCluster) last() *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

func (c *fakeCluster) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = nil
}
