package nodeselect

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPreference is returned by New when the preferred value is empty.
	ErrEmptyPreference = errors.New("nodeselect: preferred attribute value must not be empty")

	// ErrEmptyAttribute is returned by New when WithAttribute is given an empty name.
	ErrEmptyAttribute = errors.New("nodeselect: attribute name must not be empty")

	// ErrUnknownPolicy is returned by ParseMissingPolicy for unrecognized input.
	ErrUnknownPolicy = errors.New("nodeselect: unknown missing attribute policy")

	// ErrAttributeLookup matches every ErrMissingAttribute via errors.Is.
	ErrAttributeLookup = errors.New("nodeselect: attribute lookup failed")
)

// ErrMissingAttribute is returned when a candidate has no value for the
// selector's attribute and the policy is MissingIsError.
type ErrMissingAttribute struct {
	Attribute string
	// Node identifies the candidate when the caller knows how to name it.
	Node string
	// Position is the candidate's index in the input.
	Position int
}

func (e ErrMissingAttribute) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("nodeselect: node %s has no %q attribute", e.Node, e.Attribute)
	}
	return fmt.Sprintf("nodeselect: node at position %d has no %q attribute", e.Position, e.Attribute)
}

func (e ErrMissingAttribute) Is(target error) bool {
	return target == ErrAttributeLookup
}
