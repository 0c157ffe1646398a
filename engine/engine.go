package engine

import (
	"time"

	"github.com/fossillogic/pizza/assert"
	"github.com/fossillogic/pizza/chrono"
	"github.com/fossillogic/pizza/config"
	"github.com/fossillogic/pizza/meta"
	"github.com/fossillogic/pizza/report"
	"github.com/fossillogic/pizza/result"
	"github.com/fossillogic/pizza/selection"
)

// Engine is the top-level orchestrator: an ordered sequence of suites,
// aggregate totals, the configuration record it consumes, and its own
// metadata record (spec.md §3).
type Engine struct {
	Config config.Config
	Suites []*Suite

	Score     result.Score
	ElapsedNs uint64
	Meta      meta.Record

	Formatter report.Formatter
	Detector  *assert.Detector

	// Failed reports whether any suite recorded a failure; callers read it
	// to choose their exit code, as cmd/pizzademo does.
	Failed bool
}

// New returns an Engine ready for suite registration. A nil formatter
// is replaced with report.NopFormatter{}, matching show.enabled=false
// (spec.md §3 ShowPolicy).
func New(cfg config.Config, formatter report.Formatter) *Engine {
	if formatter == nil || !cfg.Show.Enabled {
		formatter = report.NopFormatter{}
	}
	return &Engine{
		Config:    cfg,
		Formatter: formatter,
		Detector:  assert.NewDetector(),
		Meta:      newMetaRecord(""),
	}
}

func newMetaRecord(prevHash string) meta.Record {
	return meta.NewRecord(prevHash)
}

// RegisterSuite appends a suite, chaining its metadata's prev-hash to
// the engine's current hash at the moment of registration (spec.md
// §3 invariant: "for every suite after the first, prev_hash equals the
// engine's hash field at the moment the suite was registered").
func (e *Engine) RegisterSuite(s *Suite) *Suite {
	s.Meta = newMetaRecord(e.Meta.Hash)
	e.Suites = append(e.Suites, s)
	return s
}

// Run executes every registered suite in registration order (spec.md
// §4.6), then seals the engine's aggregate metadata hash.
func (e *Engine) Run() {
	runStart := chrono.Nanos()

	var lastSuiteHash string
	for _, s := range e.Suites {
		e.runSuite(s)
		lastSuiteHash = s.Meta.Hash
		e.Score.Merge(s.Score)
		e.Failed = e.Failed || s.Score.Failed > 0
	}
	e.Score.Recompute()
	e.ElapsedNs = chrono.Elapsed(runStart, chrono.Nanos())

	counters := [5]int{e.Score.Failed, e.Score.Timeout, e.Score.Skipped, e.Score.Unexpected, e.Score.Empty}
	e.Meta = meta.EngineSeal(e.Meta, e.Score.TotalPossible, e.Score.TotalScore, counters, lastSuiteHash)
}

func (e *Engine) runSuite(s *Suite) {
	if s.Setup != nil {
		s.Setup()
	}
	start := chrono.Nanos()
	s.Score = result.Score{}

	selected := selection.Pipeline(s.Cases, e.Config)
	if len(e.Config.Run.Only) > 0 {
		selected = selection.Filter(selected, config.FilterPolicy{
			Name: config.NameFilter{Values: e.Config.Run.Only, Wildcard: e.Config.Run.Wildcard},
		})
	}

	for _, c := range selected {
		if isSkipped(e.Config.Run.Skip, c.Name) {
			c.Result = result.Skipped
			e.finishCase(s, c)
			continue
		}

		aborted := e.runCase(s, c)
		if aborted {
			break
		}
	}

	s.ElapsedNs = chrono.Elapsed(start, chrono.Nanos())
	if s.Teardown != nil {
		s.Teardown()
	}

	s.Meta = meta.SuiteSeal(s.Meta, s.Name, s.ElapsedNs, s.Score.Passed, s.Score.Failed, e.Meta.Hash)

	e.Formatter.Suite(report.SuiteReport{
		SuiteName: s.Name,
		Score:     s.Score,
		ElapsedNs: s.ElapsedNs,
	})
}

func isSkipped(skip, name string) bool {
	return skip != "" && skip == name
}

// runCase runs a single case for Config.Run.Repeat iterations (default
// 1, spec.md §4.6 step 5b); the last iteration's outcome is retained
// (spec.md §4.9 "Terminal"), except that a fail-fast jump stops the
// repeat loop immediately rather than completing the remaining
// iterations. It reports whether fail-fast aborted the enclosing suite.
func (e *Engine) runCase(s *Suite, c *Case) (abort bool) {
	repeat := e.Config.Run.Repeat
	if repeat < 1 {
		repeat = 1
	}

	timeout := e.Config.Run.Timeout
	if timeout == 0 {
		timeout = 60_000_000_000
	}

	trap := assert.NewTrap(e.Detector)

	var elapsed uint64
	var jumped bool
	var failure *assert.Failure

	for i := 0; i < repeat; i++ {
		if c.Setup != nil {
			c.Setup()
		}

		start := chrono.Nanos()
		failure, jumped = trap.Run(func() {
			if c.Body != nil {
				c.Body(trap)
			}
		})
		elapsed = chrono.Elapsed(start, chrono.Nanos())

		if c.Teardown != nil {
			c.Teardown()
		}

		if jumped && e.Config.Run.FailFast {
			break
		}
	}

	c.ElapsedNs = elapsed
	c.Steps = trap.Steps()

	switch {
	case jumped:
		c.Result = result.Fail
		c.Duplicate = failure.Duplicate
	case trap.AssertionCount() == 0:
		c.Result = result.Empty
	case elapsed > timeout:
		c.Result = result.Timeout
	default:
		c.Result = result.Pass
	}

	e.finishCase(s, c)

	if jumped && e.Config.Run.FailFast {
		return true
	}
	return false
}

// finishCase updates the suite's score, reseals the case's metadata
// hash at result time, and invokes the formatter (spec.md §4.6 step
// 5d).
func (e *Engine) finishCase(s *Suite, c *Case) {
	s.Score.Add(c.Result)
	s.Score.Recompute()

	chainPrev := s.lastResultHash
	if chainPrev == "" {
		chainPrev = c.Meta.PrevHash
	}
	c.Meta = c.Meta.Reseal(c.Name, c.Meta.Author, c.Meta.Origin, int(c.Result), time.Now().Unix(), chainPrev)
	s.lastResultHash = c.Meta.Hash

	e.Formatter.Case(report.CaseReport{
		SuiteName: s.Name,
		CaseName:  c.Name,
		Tags:      c.Tags(),
		Criteria:  c.Criteria,
		ElapsedNs: c.ElapsedNs,
		Result:    c.Result,
		Duplicate: c.Duplicate,
		Steps:     stepStrings(c),
		Verbosity: e.Config.Show.Verbosity,
		Display:   e.Config.Show.Display,
		Theme:     e.Config.Theme,
	})
}

func stepStrings(c *Case) []string {
	if len(c.Steps) == 0 {
		return nil
	}
	out := make([]string, len(c.Steps))
	for i, step := range c.Steps {
		out[i] = step.Kind + ": " + step.Description
	}
	return out
}

// Summary emits the heading, scoreboard, timing, and feedback records
// through the formatter (spec.md §4.8). Call after Run.
func (e *Engine) Summary(hostOS, endianness string) {
	e.Formatter.Heading(report.Heading{HostOS: hostOS, Endianness: endianness})

	testCount := e.Score.TotalPossible
	e.Formatter.Scoreboard(report.Scoreboard{
		SuiteCount: len(e.Suites),
		TestCount:  testCount,
		Score:      e.Score,
	})

	var avgSuite, avgTest uint64
	if n := len(e.Suites); n > 0 {
		avgSuite = e.ElapsedNs / uint64(n)
	}
	if testCount > 0 {
		avgTest = e.ElapsedNs / uint64(testCount)
	}
	e.Formatter.Timing(report.Timing{
		Total:         chrono.SplitNanos(e.ElapsedNs),
		AvgPerSuiteNs: avgSuite,
		AvgPerTestNs:  avgTest,
	})

	e.Formatter.Feedback(report.Summarize(e.Score, e.ElapsedNs/1000))
}
