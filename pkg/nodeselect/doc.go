// Package nodeselect narrows a set of cluster nodes to those carrying a
// preferred attribute value, falling back to the full set when no node
// matches.
//
// The canonical use is rack or zone affinity: every node reports a "rack_id"
// attribute and requests should stay inside the local rack while at least one
// node of that rack is reachable.
//
//	sel, err := nodeselect.New("rack_one")
//	if err != nil {
//	    // empty preference
//	}
//	nodes, err := sel.Select(discovered)
//
// Filter is the generic form used by transports that keep their own node
// type; it takes an AttributeFunc that reads the attribute from that type.
//
// # Guarantees
//
// Filtering never mutates its input and never turns a non-empty input into an
// empty output. When no node matches, the input slice itself is returned.
// Applying the filter to its own output yields the same output.
//
// # Missing attributes
//
// A node without the attribute is handled by the selector's MissingPolicy.
// MissingIsError (the default) fails the call with ErrMissingAttribute;
// MissingIsMismatch treats the node as non-preferred.
//
// A Selector is immutable and safe for concurrent use. Filtering performs no
// I/O and takes no locks.
package nodeselect
