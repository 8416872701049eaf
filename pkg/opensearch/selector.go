package opensearch

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/opensearch-project/opensearch-go/v2/opensearchtransport"

	"github.com/dmitrymomot/searchkit/pkg/nodeselect"
)

var errNoConnection = errors.New("no connection available")

// nodeSelector routes requests to connections preferred by a
// nodeselect.Selector, round-robin.
//
// Seed connections built from the configured addresses carry no node
// metadata; until discovery replaces them they are used as-is. While a
// discovery started through discover is running, a node missing the
// attribute does not fail selection, so the client can still learn a
// repaired topology.
type nodeSelector struct {
	sel         *nodeselect.Selector
	next        atomic.Uint64
	discovering atomic.Int32
}

var _ opensearchtransport.Selector = (*nodeSelector)(nil)

func newNodeSelector(sel *nodeselect.Selector) *nodeSelector {
	return &nodeSelector{sel: sel}
}

func (s *nodeSelector) Select(conns []*opensearchtransport.Connection) (*opensearchtransport.Connection, error) {
	if len(conns) == 0 {
		return nil, errNoConnection
	}

	candidates := conns
	if discovered(conns) {
		var err error
		candidates, err = nodeselect.Filter(s.sel, conns, connectionAttribute)
		if err != nil {
			var missing nodeselect.ErrMissingAttribute
			switch {
			case !errors.As(err, &missing):
				return nil, err
			case s.discovering.Load() == 0:
				missing.Node = conns[missing.Position].URL.String()
				return nil, missing
			default:
				candidates = conns
			}
		}
	}

	i := s.next.Add(1) - 1
	return candidates[i%uint64(len(candidates))], nil
}

// discover runs d with selection errors for missing attributes suspended.
func (s *nodeSelector) discover(d Discoverer) error {
	s.discovering.Add(1)
	defer s.discovering.Add(-1)
	return d.DiscoverNodes()
}

type discoverFunc func() error

func (f discoverFunc) DiscoverNodes() error { return f() }

// discovered reports whether the connections came from node discovery.
func discovered(conns []*opensearchtransport.Connection) bool {
	for _, c := range conns {
		if c.ID != "" {
			return true
		}
	}
	return false
}

// connectionAttribute reads the first value of a node attribute. Discovery
// decodes attributes from JSON, so values arrive as strings or lists.
func connectionAttribute(c *opensearchtransport.Connection, name string) (string, bool) {
	raw, ok := c.Attributes[name]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return v[0], true
	case []any:
		if len(v) == 0 {
			return "", false
		}
		if s, ok := v[0].(string); ok {
			return s, true
		}
		return fmt.Sprint(v[0]), true
	default:
		return fmt.Sprint(v), true
	}
}
