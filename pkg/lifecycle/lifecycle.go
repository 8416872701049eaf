// Package lifecycle defines the start/stop capability a host application
// drives on long-lived components such as database or search clients.
package lifecycle

import (
	"context"
	"errors"
)

// Managed is a component whose lifecycle is driven by a host.
// Start is called before the host begins serving, Stop after it has
// stopped accepting work.
type Managed interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// StartAll starts components in order. If one fails, the components already
// started are stopped in reverse order and every error is returned joined.
func StartAll(ctx context.Context, ms ...Managed) error {
	for i, m := range ms {
		if err := m.Start(ctx); err != nil {
			return errors.Join(err, StopAll(ctx, ms[:i]...))
		}
	}
	return nil
}

// StopAll stops components in reverse order. Every component is stopped even
// when an earlier one fails; the errors are returned joined.
func StopAll(ctx context.Context, ms ...Managed) error {
	var errs []error
	for i := len(ms) - 1; i >= 0; i-- {
		if err := ms[i].Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
