// Package chrono provides the monotonic nanosecond timestamp used to
// stamp case and suite execution, and to classify timeouts.
package chrono

import "time"

// now is overridable in tests, following the catrate package's timeNow
// indirection.
var now = time.Now

// epoch anchors Nanos to the wall clock once per process; later readings
// advance from it by the monotonic clock.
var epoch = time.Now()

// Nanos returns a monotonic nanosecond-resolution timestamp. Go's
// time.Now already carries a monotonic reading on every supported
// platform, so no further portability shim is required (spec.md §9
// "Timing portability" only requires monotonicity and ns resolution,
// not a specific clock source).
func Nanos() uint64 {
	return uint64(epoch.UnixNano() + int64(now().Sub(epoch)))
}

// Elapsed returns the nanoseconds between two Nanos() readings, saturating
// at zero if end precedes start (which should not happen for monotonic
// readings, but guards against a test double that violates the contract).
func Elapsed(start, end uint64) uint64 {
	if end < start {
		return 0
	}
	return end - start
}

// Split breaks an elapsed-nanoseconds duration into the
// hours/minutes/seconds/microseconds/nanoseconds components used by the
// timing record (spec.md §4.8).
type Split struct {
	Hours        uint64
	Minutes      uint64
	Seconds      uint64
	Microseconds uint64
	Nanoseconds  uint64
}

// SplitNanos decomposes ns into a Split.
func SplitNanos(ns uint64) Split {
	const (
		nsPerUs   = 1000
		nsPerMs   = 1000 * nsPerUs
		nsPerSec  = 1000 * nsPerMs
		nsPerMin  = 60 * nsPerSec
		nsPerHour = 60 * nsPerMin
	)
	var s Split
	s.Hours, ns = ns/nsPerHour, ns%nsPerHour
	s.Minutes, ns = ns/nsPerMin, ns%nsPerMin
	s.Seconds, ns = ns/nsPerSec, ns%nsPerSec
	s.Microseconds, ns = ns/nsPerUs, ns%nsPerUs
	s.Nanoseconds = ns
	return s
}
