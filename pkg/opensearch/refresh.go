package opensearch

import (
	"fmt"
	"time"
)

type refreshKind uint8

const (
	refreshNone refreshKind = iota
	refreshAfterFailure
	refreshInterval
)

// Refresh selects how the cluster topology is kept current. Exactly one of
// the three modes applies; build values with NoRefresh, RefreshAfterFailure
// or RefreshEvery.
type Refresh struct {
	kind     refreshKind
	interval time.Duration
	delay    time.Duration
}

// NoRefresh disables background topology refresh.
func NoRefresh() Refresh { return Refresh{} }

// RefreshAfterFailure re-discovers nodes every interval and, in addition,
// as soon as a request fails. The discovery that follows a failure is
// repeated once after delay before the interval takes over again.
func RefreshAfterFailure(interval, delay time.Duration) Refresh {
	return Refresh{kind: refreshAfterFailure, interval: interval, delay: delay}
}

// RefreshEvery re-discovers nodes at a fixed interval.
func RefreshEvery(interval time.Duration) Refresh {
	return Refresh{kind: refreshInterval, interval: interval}
}

// Enabled reports whether any background refresh is configured.
func (r Refresh) Enabled() bool { return r.kind != refreshNone }

// OnFailure reports whether request failures trigger a refresh.
func (r Refresh) OnFailure() bool { return r.kind == refreshAfterFailure }

// Interval is the period between regular refreshes.
func (r Refresh) Interval() time.Duration { return r.interval }

// FailureDelay is the wait before the follow-up refresh after a failure.
// It is zero outside failure mode.
func (r Refresh) FailureDelay() time.Duration { return r.delay }

func (r Refresh) String() string {
	switch r.kind {
	case refreshAfterFailure:
		return fmt.Sprintf("after_failure(%s, %s)", r.interval, r.delay)
	case refreshInterval:
		return fmt.Sprintf("interval(%s)", r.interval)
	default:
		return "none"
	}
}
