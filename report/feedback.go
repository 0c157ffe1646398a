package report

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/fossillogic/pizza/result"
)

// feedbackTier is one of the ten pools the cascade selects from,
// ported verbatim from fossil_test_summary_feedback (test.c lines
// 1021-1249), 20 messages each (SPEC_FULL.md §12.3).
type feedbackTier int

const (
	tierPerfect feedbackTier = iota
	tierNearPerfect
	tierStrong
	tierMixed
	tierFailureHeavy
	tierTimeout
	tierSkipped
	tierEmpty
	tierUnexpected
	tierCritical
	tierCount
)

var feedbackPool = [tierCount][20]string{
	tierPerfect: {
		"Perfect stability: all tests passed.",
		"Outstanding run: no issues detected.",
		"Flawless baseline: zero failures.",
		"Solid confidence: all cases succeeded.",
		"Full coverage success: suite passed without error.",
		"Impeccable results: every test succeeded.",
		"No regressions: suite is fully stable.",
		"All systems go: 100 percent pass rate.",
		"Unmatched reliability: no failures found.",
		"Suite integrity confirmed: all checks passed.",
		"Zero errors: flawless execution.",
		"Complete validation: no issues present.",
		"All criteria met: suite is robust.",
		"No anomalies: perfect run.",
		"Total coverage: every test executed successfully.",
		"No skipped or failed cases: ideal outcome.",
		"Suite passed with flying colors.",
		"No warnings: suite is in top condition.",
		"All logic verified: no defects.",
		"Suite health: optimal, no faults.",
	},
	tierNearPerfect: {
		"Near-perfect: minor failures present.",
		"Almost clean: one or two cases failed.",
		"Very strong performance with isolated gaps.",
		"Excellent reliability, but not absolute.",
		"A few adjustments needed for total success.",
		"Minor issues detected: overall strong.",
		"Suite nearly flawless: small improvements needed.",
		"High reliability: rare failures.",
		"Almost ideal: suite is mostly stable.",
		"Few regressions: suite is robust.",
		"Minor anomalies: suite is healthy.",
		"Small number of failures: suite is strong.",
		"Isolated issues: suite is reliable.",
		"Suite passed with minor exceptions.",
		"Strong results: minor corrections required.",
		"Almost all tests passed: suite is solid.",
		"Suite integrity: high, with rare faults.",
		"Few missed criteria: suite is dependable.",
		"Suite nearly perfect: check minor failures.",
		"Minor gaps: suite is well-tested.",
	},
	tierStrong: {
		"High pass rate, suite largely stable.",
		"Reliability confirmed, with minor issues.",
		"Above expectations, but not flawless.",
		"Strong resilience across test cases.",
		"Overall positive results, but check edge cases.",
		"Suite is robust: some failures present.",
		"Most tests passed: suite is healthy.",
		"Good coverage: some cases failed.",
		"Suite stability: generally strong.",
		"Majority of tests succeeded: suite is reliable.",
		"Suite is solid: minor regressions.",
		"Test reliability: above average.",
		"Suite passed most checks: review failures.",
		"Suite is dependable: some improvements needed.",
		"Strong results: suite is well-maintained.",
		"Suite health: good, with some faults.",
		"Most logic verified: suite is stable.",
		"Suite is resilient: minor issues detected.",
		"Suite is well-tested: some gaps remain.",
		"Suite performance: strong, but not perfect.",
	},
	tierMixed: {
		"Balanced outcome: passes and failures split.",
		"Moderate reliability: issues present but not overwhelming.",
		"Inconsistent behavior detected in suite.",
		"Suite stability is uneven.",
		"Test reliability shows room for improvement.",
		"Mixed results: suite needs review.",
		"Suite passed and failed in equal measure.",
		"Suite outcome: variable, check failures.",
		"Suite health: inconsistent.",
		"Suite is unstable: passes and failures mixed.",
		"Suite coverage: partial, review failed cases.",
		"Suite results: mixed reliability.",
		"Suite is unpredictable: review logic.",
		"Suite outcome: moderate, needs improvement.",
		"Suite is inconsistent: check criteria.",
		"Suite passed some, failed others.",
		"Suite reliability: uncertain.",
		"Suite is erratic: review test logic.",
		"Suite results: uneven, needs attention.",
		"Suite outcome: mixed, review for stability.",
	},
	tierFailureHeavy: {
		"High failure rate detected, needs investigation.",
		"Many cases failed, stability concerns raised.",
		"Serious regression: majority of cases did not pass.",
		"Multiple failures indicate critical bugs.",
		"Widespread issues identified across the suite.",
		"Suite is unstable: many failures.",
		"Suite failed most tests: urgent review needed.",
		"Suite health: poor, many faults.",
		"Suite integrity: compromised by failures.",
		"Suite outcome: failure-heavy, investigate.",
		"Suite reliability: low, many regressions.",
		"Suite is unreliable: major issues present.",
		"Suite failed to meet criteria: review logic.",
		"Suite is broken: many failed cases.",
		"Suite outcome: critical, many failures.",
		"Suite failed most checks: review required.",
		"Suite is unstable: major defects detected.",
		"Suite health: critical, many failures.",
		"Suite failed to pass: investigate regressions.",
		"Suite outcome: failure-dominant, review urgently.",
	},
	tierTimeout: {
		"Some cases failed to finish in time.",
		"Timeouts suggest performance bottlenecks.",
		"Long-running operations caused instability.",
		"Multiple timeouts detected — review efficiency.",
		"Suite affected by delays or infinite loops.",
		"Suite performance: timeouts present.",
		"Suite is slow: review for bottlenecks.",
		"Suite execution delayed: timeouts detected.",
		"Suite health: affected by timeouts.",
		"Suite failed to complete: timeouts present.",
		"Suite outcome: slow, review for efficiency.",
		"Suite is inefficient: timeouts detected.",
		"Suite execution: delayed by timeouts.",
		"Suite reliability: affected by timeouts.",
		"Suite is unstable: timeouts present.",
		"Suite failed to finish: review for delays.",
		"Suite outcome: timeouts, review logic.",
		"Suite is slow: performance issues detected.",
		"Suite execution: timeouts, review efficiency.",
		"Suite health: timeouts, review for bottlenecks.",
	},
	tierSkipped: {
		"Several cases were skipped.",
		"Coverage gaps: too many skipped tests.",
		"Partial run — skipped cases limit reliability.",
		"Suite execution incomplete due to skipped cases.",
		"Large number of skips indicates missing dependencies.",
		"Suite coverage: incomplete, many skips.",
		"Suite health: affected by skipped cases.",
		"Suite outcome: partial, many skips.",
		"Suite reliability: limited by skipped tests.",
		"Suite is incomplete: skipped cases present.",
		"Suite execution: many skips detected.",
		"Suite coverage: gaps due to skips.",
		"Suite is partial: skipped cases limit reliability.",
		"Suite health: incomplete, review skips.",
		"Suite outcome: many skips, review dependencies.",
		"Suite reliability: affected by skipped cases.",
		"Suite is incomplete: review skipped tests.",
		"Suite execution: skipped cases present.",
		"Suite coverage: limited by skips.",
		"Suite health: review skipped cases.",
	},
	tierEmpty: {
		"No implemented tests detected.",
		"Test placeholders exist but contain no logic.",
		"Suite mostly empty, coverage not achieved.",
		"Untested code paths remain.",
		"Define actual logic before re-running.",
		"Suite is empty: no tests implemented.",
		"Suite coverage: missing, no logic present.",
		"Suite health: empty, implement tests.",
		"Suite outcome: no tests, review coverage.",
		"Suite reliability: not tested.",
		"Suite is incomplete: no logic present.",
		"Suite execution: empty, implement tests.",
		"Suite coverage: missing, add logic.",
		"Suite health: empty, review for coverage.",
		"Suite outcome: no tests, implement logic.",
		"Suite reliability: not achieved, no tests.",
		"Suite is empty: add test logic.",
		"Suite execution: no tests present.",
		"Suite coverage: empty, implement tests.",
		"Suite health: review for test logic.",
	},
	tierUnexpected: {
		"Unexpected results indicate possible undefined behavior.",
		"Test suite produced anomalies not mapped in criteria.",
		"Unexpected output raises questions about correctness.",
		"Unstable behavior — criteria may be mismatched.",
		"Suite generated results outside defined expectations.",
		"Suite outcome: unexpected, review logic.",
		"Suite reliability: anomalies detected.",
		"Suite is unstable: unexpected results.",
		"Suite execution: unexpected outcomes present.",
		"Suite health: anomalies, review criteria.",
		"Suite outcome: unexpected, review for correctness.",
		"Suite reliability: unstable, unexpected results.",
		"Suite is unpredictable: anomalies detected.",
		"Suite execution: unexpected outcomes.",
		"Suite health: unexpected results, review logic.",
		"Suite outcome: anomalies, review for correctness.",
		"Suite reliability: unexpected, review criteria.",
		"Suite is unstable: unexpected outcomes.",
		"Suite execution: anomalies detected.",
		"Suite health: unexpected results, review for correctness.",
	},
	tierCritical: {
		"Catastrophic regression: system integrity at risk.",
		"Severe instability detected, halt release pipeline.",
		"Suite outcome suggests major defects.",
		"Reliability too low for deployment.",
		"Critical failures demand immediate review.",
		"Suite is broken: critical issues present.",
		"Suite health: catastrophic, halt deployment.",
		"Suite outcome: major defects detected.",
		"Suite reliability: too low for release.",
		"Suite is unstable: critical failures present.",
		"Suite execution: catastrophic, review urgently.",
		"Suite health: major defects, halt release.",
		"Suite outcome: critical, review for defects.",
		"Suite reliability: catastrophic, halt deployment.",
		"Suite is broken: major issues detected.",
		"Suite execution: critical failures present.",
		"Suite health: catastrophic, review urgently.",
		"Suite outcome: major defects, halt release.",
		"Suite reliability: critical, review for defects.",
		"Suite is unstable: catastrophic failures present.",
	},
}

// randIntn is overridable in tests for deterministic tier-message
// selection, following the catrate package's var-indirection pattern
// for test doubles.
var randIntn = rand.Intn

func pickTier(tier feedbackTier) string {
	return feedbackPool[tier][randIntn(20)]
}

// Summarize selects a feedback message by cascading on the score
// profile (spec.md §4.8), ported from fossil_test_summary_feedback's
// selection order exactly (test.c lines 1030-1051), then appends an
// elapsed-time hint when timeouts are present and priority-ordered
// improvement hints (Fail > Timeout > Unexpected > Skipped > Empty).
func Summarize(s result.Score, elapsedMicros uint64) Feedback {
	total := s.Passed + s.Failed + s.Skipped + s.Timeout + s.Unexpected + s.Empty
	if total == 0 {
		return Feedback{Message: "No tests were run."}
	}

	passRate := float64(s.Passed) / float64(total) * 100
	failRatio := float64(s.Failed+s.Unexpected) / float64(total)

	var chosen string
	switch {
	case passRate == 100:
		chosen = pickTier(tierPerfect)
	case failRatio > 0.5:
		chosen = pickTier(tierFailureHeavy)
	case s.Timeout > 0:
		chosen = pickTier(tierTimeout)
	case s.Skipped > 0:
		chosen = pickTier(tierSkipped)
	case s.Empty > 0 && s.Passed == 0:
		chosen = pickTier(tierEmpty)
	case s.Unexpected > 0:
		chosen = pickTier(tierUnexpected)
	case passRate > 90:
		chosen = pickTier(tierNearPerfect)
	case passRate > 70:
		chosen = pickTier(tierStrong)
	case passRate > 40:
		chosen = pickTier(tierMixed)
	default:
		chosen = pickTier(tierCritical)
	}

	var timeHint string
	if s.Timeout > 0 {
		timeHint = fmt.Sprintf(" [Elapsed: %d us]", elapsedMicros)
	}

	var hints strings.Builder
	if s.Failed > 0 {
		hints.WriteString(" Check failing cases first for regressions.")
	}
	if s.Timeout > 0 {
		hints.WriteString(" Investigate timeouts to improve performance.")
	}
	if s.Unexpected > 0 {
		hints.WriteString(" Review unexpected outcomes for correctness.")
	}
	if s.Skipped > 0 {
		hints.WriteString(" Verify skipped tests are justified.")
	}
	if s.Empty > 0 {
		hints.WriteString(" Fill empty tests to ensure coverage.")
	}

	return Feedback{Message: chosen + timeHint + hints.String()}
}
