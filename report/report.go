// Package report implements the formatter interface consumed by the
// execution engine (spec.md §4.8, §6, §9 "Themed formatter") and the
// ten named theme styles (SPEC_FULL.md §12.2).
//
// The formatter itself — rendering result records into styled text — is
// an external collaborator per spec.md §1; what belongs to the core is
// the interface shape and the engine's invocation of it. This package
// supplies that interface plus a handful of concrete implementations
// (a themed text sink, a zerolog structured sink, a JSON sink, and a
// spew-dump sink) as the worked reference implementation a caller would
// plug in.
package report

import (
	"fmt"

	"github.com/fossillogic/pizza/chrono"
	"github.com/fossillogic/pizza/config"
	"github.com/fossillogic/pizza/result"
)

// Theme re-exports config.Theme for convenience within this package.
type Theme = config.Theme

// CaseReport is the per-case output record (spec.md §6).
type CaseReport struct {
	SuiteName string
	CaseName  string
	Tags      []string
	Criteria  string
	ElapsedNs uint64
	Result    result.Variant
	Duplicate int
	Steps     []string // rendered narrative markers, SPEC_FULL.md §12.1

	Verbosity config.Verbosity
	Display   config.DisplayMode
	Theme     Theme
}

// SuiteReport is the per-suite score record (spec.md §6).
type SuiteReport struct {
	SuiteName string
	Score     result.Score
	ElapsedNs uint64
}

// Heading is the engine summary's heading record (spec.md §4.8).
type Heading struct {
	HostOS     string
	Endianness string
}

// Scoreboard is the engine summary's scoreboard record (spec.md §4.8).
type Scoreboard struct {
	SuiteCount int
	TestCount  int
	Score      result.Score
}

// Timing is the engine summary's timing record (spec.md §4.8).
type Timing struct {
	Total         chrono.Split
	AvgPerSuiteNs uint64
	AvgPerTestNs  uint64
}

// AvgPerSuiteUs/Ms and AvgPerTestUs/Ms, in microseconds and
// milliseconds, derived on demand (spec.md §4.8: "average elapsed per
// suite and per test in ns, µs, and ms").
func (t Timing) AvgPerSuiteUs() float64 { return float64(t.AvgPerSuiteNs) / 1000 }
func (t Timing) AvgPerSuiteMs() float64 { return float64(t.AvgPerSuiteNs) / 1_000_000 }
func (t Timing) AvgPerTestUs() float64  { return float64(t.AvgPerTestNs) / 1000 }
func (t Timing) AvgPerTestMs() float64  { return float64(t.AvgPerTestNs) / 1_000_000 }

// Feedback is the engine summary's feedback record (spec.md §4.8).
type Feedback struct {
	Message string
}

// Formatter is the polymorphic formatter interface: one method per
// record kind, per spec.md §9 ("a polymorphic interface with one method
// per record kind"). The engine holds one Formatter chosen by
// configuration and invokes it; it never formats text itself.
type Formatter interface {
	Case(CaseReport)
	Suite(SuiteReport)
	Heading(Heading)
	Scoreboard(Scoreboard)
	Timing(Timing)
	Feedback(Feedback)
}

// FormatNs renders ns as "X s Y us Z ns", matching
// fossil_pizza_format_ns's output shape from the source.
func FormatNs(ns uint64) string {
	s := chrono.SplitNanos(ns)
	totalSeconds := s.Hours*3600 + s.Minutes*60 + s.Seconds
	return fmt.Sprintf("%d s %d us %d ns", totalSeconds, s.Microseconds, s.Nanoseconds)
}

// NopFormatter discards every record; useful when show.Enabled is false
// (spec.md §3 ShowPolicy.Enabled).
type NopFormatter struct{}

func (NopFormatter) Case(CaseReport)       {}
func (NopFormatter) Suite(SuiteReport)     {}
func (NopFormatter) Heading(Heading)       {}
func (NopFormatter) Scoreboard(Scoreboard) {}
func (NopFormatter) Timing(Timing)         {}
func (NopFormatter) Feedback(Feedback)     {}

var _ Formatter = NopFormatter{}
