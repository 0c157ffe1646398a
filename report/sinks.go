package report

import (
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/joeycumines/go-utilpkg/jsonenc"
	"github.com/rs/zerolog"
)

// ZerologSink renders every record as a structured log event, one per
// call, through an injected zerolog.Logger. Grounded on the logging
// pairing used throughout the pack (logiface-zerolog wires the same
// library as a backend); here it is used directly as a report sink
// rather than through an abstraction layer, since this module has only
// the one backend to support.
type ZerologSink struct {
	Logger zerolog.Logger
}

func (s ZerologSink) Case(r CaseReport) {
	s.Logger.Info().
		Str("suite", r.SuiteName).
		Str("case", r.CaseName).
		Strs("tags", r.Tags).
		Str("criteria", r.Criteria).
		Uint64("elapsed_ns", r.ElapsedNs).
		Str("result", r.Result.String()).
		Int("duplicate", r.Duplicate).
		Msg("case")
}

func (s ZerologSink) Suite(r SuiteReport) {
	s.Logger.Info().
		Str("suite", r.SuiteName).
		Int("passed", r.Score.Passed).
		Int("failed", r.Score.Failed).
		Int("skipped", r.Score.Skipped).
		Int("timeout", r.Score.Timeout).
		Int("unexpected", r.Score.Unexpected).
		Int("empty", r.Score.Empty).
		Uint64("elapsed_ns", r.ElapsedNs).
		Msg("suite")
}

func (s ZerologSink) Heading(r Heading) {
	s.Logger.Info().Str("host_os", r.HostOS).Str("endianness", r.Endianness).Msg("heading")
}

func (s ZerologSink) Scoreboard(r Scoreboard) {
	s.Logger.Info().
		Int("suites", r.SuiteCount).
		Int("tests", r.TestCount).
		Float64("success_rate", r.Score.SuccessRate()).
		Msg("scoreboard")
}

func (s ZerologSink) Timing(r Timing) {
	s.Logger.Info().
		Uint64("avg_per_suite_ns", r.AvgPerSuiteNs).
		Uint64("avg_per_test_ns", r.AvgPerTestNs).
		Msg("timing")
}

func (s ZerologSink) Feedback(r Feedback) {
	s.Logger.Info().Str("message", r.Message).Msg("feedback")
}

var _ Formatter = ZerologSink{}

// JSONSink writes each record as a single-line JSON object, encoded
// through jsonenc's AppendString rather than encoding/json, matching
// the pack's own choice of a purpose-built string encoder for
// machine-readable sinks (jsonenc package, adopted directly as an
// external module here rather than copied).
type JSONSink struct {
	Writer io.Writer
}

func (s JSONSink) writeLine(b []byte) {
	b = append(b, '\n')
	s.Writer.Write(b)
}

func (s JSONSink) Case(r CaseReport) {
	b := append([]byte(nil), `{"kind":"case","suite":`...)
	b = jsonenc.AppendString(b, r.SuiteName)
	b = append(b, `,"case":`...)
	b = jsonenc.AppendString(b, r.CaseName)
	b = append(b, `,"criteria":`...)
	b = jsonenc.AppendString(b, r.Criteria)
	b = append(b, `,"result":`...)
	b = jsonenc.AppendString(b, r.Result.String())
	b = append(b, `,"duplicate":`...)
	b = append(b, itoa(r.Duplicate)...)
	b = append(b, `,"elapsed_ns":`...)
	b = append(b, utoa(r.ElapsedNs)...)
	b = append(b, '}')
	s.writeLine(b)
}

func (s JSONSink) Suite(r SuiteReport) {
	b := append([]byte(nil), `{"kind":"suite","suite":`...)
	b = jsonenc.AppendString(b, r.SuiteName)
	b = append(b, `,"passed":`...)
	b = append(b, itoa(r.Score.Passed)...)
	b = append(b, `,"failed":`...)
	b = append(b, itoa(r.Score.Failed)...)
	b = append(b, `,"elapsed_ns":`...)
	b = append(b, utoa(r.ElapsedNs)...)
	b = append(b, '}')
	s.writeLine(b)
}

func (s JSONSink) Heading(r Heading) {
	b := append([]byte(nil), `{"kind":"heading","host_os":`...)
	b = jsonenc.AppendString(b, r.HostOS)
	b = append(b, `,"endianness":`...)
	b = jsonenc.AppendString(b, r.Endianness)
	b = append(b, '}')
	s.writeLine(b)
}

func (s JSONSink) Scoreboard(r Scoreboard) {
	b := append([]byte(nil), `{"kind":"scoreboard","suites":`...)
	b = append(b, itoa(r.SuiteCount)...)
	b = append(b, `,"tests":`...)
	b = append(b, itoa(r.TestCount)...)
	b = append(b, '}')
	s.writeLine(b)
}

func (s JSONSink) Timing(r Timing) {
	b := append([]byte(nil), `{"kind":"timing","avg_per_suite_ns":`...)
	b = append(b, utoa(r.AvgPerSuiteNs)...)
	b = append(b, `,"avg_per_test_ns":`...)
	b = append(b, utoa(r.AvgPerTestNs)...)
	b = append(b, '}')
	s.writeLine(b)
}

func (s JSONSink) Feedback(r Feedback) {
	b := append([]byte(nil), `{"kind":"feedback","message":`...)
	b = jsonenc.AppendString(b, r.Message)
	b = append(b, '}')
	s.writeLine(b)
}

var _ Formatter = JSONSink{}

func itoa(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := utoa(uint64(n))
	if neg {
		return "-" + s
	}
	return s
}

func utoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// SpewSink dumps every record's full tree via go-spew, matching the
// "doge" verbosity mode's appetite for maximal, unfiltered detail
// (config.VerbosityDoge). Grounded on go-spew as used across the pack
// for deep structural dumps in test and debug paths.
type SpewSink struct {
	Writer io.Writer
}

func (s SpewSink) dump(v any) {
	io.WriteString(s.Writer, spew.Sdump(v))
}

func (s SpewSink) Case(r CaseReport)       { s.dump(r) }
func (s SpewSink) Suite(r SuiteReport)     { s.dump(r) }
func (s SpewSink) Heading(r Heading)       { s.dump(r) }
func (s SpewSink) Scoreboard(r Scoreboard) { s.dump(r) }
func (s SpewSink) Timing(r Timing)         { s.dump(r) }
func (s SpewSink) Feedback(r Feedback)     { s.dump(r) }

var _ Formatter = SpewSink{}
