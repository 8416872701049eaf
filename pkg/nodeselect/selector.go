package nodeselect

import (
	"fmt"
	"strings"
)

// DefaultAttribute is the node attribute matched when WithAttribute is not used.
const DefaultAttribute = "rack_id"

// MissingPolicy decides what happens when a candidate lacks the attribute.
type MissingPolicy int

const (
	// MissingIsError fails the selection call.
	MissingIsError MissingPolicy = iota
	// MissingIsMismatch treats the candidate as not preferred.
	MissingIsMismatch
)

func (p MissingPolicy) String() string {
	switch p {
	case MissingIsError:
		return "error"
	case MissingIsMismatch:
		return "mismatch"
	default:
		return fmt.Sprintf("MissingPolicy(%d)", int(p))
	}
}

// ParseMissingPolicy maps "error" and "mismatch" to their policies.
// An empty string yields MissingIsError.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return MissingIsError, nil
	case "mismatch":
		return MissingIsMismatch, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Node describes one cluster member as reported at discovery time.
type Node struct {
	Address    string
	Attributes map[string][]string
}

// Attribute returns the first value recorded for name.
// It reports false when the attribute is absent or has no values.
func (n Node) Attribute(name string) (string, bool) {
	values := n.Attributes[name]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// AttributeFunc reads a named attribute from a node of type N.
type AttributeFunc[N any] func(node N, name string) (string, bool)

// Option configures a Selector.
type Option func(*Selector)

// WithAttribute sets the attribute name compared against the preferred value.
func WithAttribute(name string) Option {
	return func(s *Selector) { s.attribute = name }
}

// WithMissingPolicy sets how candidates without the attribute are treated.
func WithMissingPolicy(p MissingPolicy) Option {
	return func(s *Selector) { s.missing = p }
}

// Selector prefers nodes whose attribute equals a fixed value.
type Selector struct {
	attribute string
	preferred string
	missing   MissingPolicy
}

// New returns a Selector preferring nodes whose attribute equals preferred.
func New(preferred string, opts ...Option) (*Selector, error) {
	if preferred == "" {
		return nil, ErrEmptyPreference
	}
	s := &Selector{
		attribute: DefaultAttribute,
		preferred: preferred,
		missing:   MissingIsError,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.attribute == "" {
		return nil, ErrEmptyAttribute
	}
	if s.missing != MissingIsError && s.missing != MissingIsMismatch {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, s.missing)
	}
	return s, nil
}

// Attribute returns the attribute name the selector matches on.
func (s *Selector) Attribute() string { return s.attribute }

// Preferred returns the preferred attribute value.
func (s *Selector) Preferred() string { return s.preferred }

// MissingPolicy returns the policy applied to candidates lacking the attribute.
func (s *Selector) MissingPolicy() MissingPolicy { return s.missing }

// Select filters nodes with Filter.
func (s *Selector) Select(nodes []Node) ([]Node, error) {
	out, err := Filter(s, nodes, Node.Attribute)
	if err != nil {
		if e, ok := err.(ErrMissingAttribute); ok {
			e.Node = nodes[e.Position].Address
			return nil, e
		}
		return nil, err
	}
	return out, nil
}

// Filter returns the candidates whose attribute equals the preferred value,
// in input order. When none match it returns nodes unchanged. The input is
// never modified.
func Filter[N any](s *Selector, nodes []N, attr AttributeFunc[N]) ([]N, error) {
	matches := 0
	for i, n := range nodes {
		ok, err := match(s, n, i, attr)
		if err != nil {
			return nil, err
		}
		if ok {
			matches++
		}
	}
	if matches == 0 || matches == len(nodes) {
		return nodes, nil
	}

	out := make([]N, 0, matches)
	for i, n := range nodes {
		// Errors were ruled out by the first pass.
		if ok, _ := match(s, n, i, attr); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func match[N any](s *Selector, n N, pos int, attr AttributeFunc[N]) (bool, error) {
	v, ok := attr(n, s.attribute)
	if !ok {
		if s.missing == MissingIsMismatch {
			return false, nil
		}
		return false, ErrMissingAttribute{Attribute: s.attribute, Position: pos}
	}
	return v == s.preferred, nil
}
