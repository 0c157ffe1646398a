package engine_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fossillogic/pizza/assert"
	"github.com/fossillogic/pizza/config"
	"github.com/fossillogic/pizza/engine"
	"github.com/fossillogic/pizza/report"
	"github.com/fossillogic/pizza/result"
)

func newTestEngine(cfg config.Config) (*engine.Engine, *bytes.Buffer) {
	var buf bytes.Buffer
	eng := engine.New(cfg, &report.TextFormatter{Writer: &buf})
	return eng, &buf
}

func TestSimplePass(t *testing.T) {
	eng, _ := newTestEngine(config.Default())
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("t1", func(t *assert.Trap) {
		t.Require(true == true, "main.go", 10, "t1", "expected true")
	}))

	eng.Run()

	require.Equal(t, result.Pass, s1.Cases[0].Result)
	require.Less(t, s1.Cases[0].ElapsedNs, uint64(time.Millisecond))
	require.Equal(t, 1, s1.Score.Passed)
	require.Equal(t, float64(100), eng.Score.SuccessRate())
}

func TestSimpleFail(t *testing.T) {
	eng, buf := newTestEngine(config.Default())
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("t1", func(t *assert.Trap) {
		t.Require(1 == 2, "main.go", 20, "t1", "expected 1 == 2")
	}))

	eng.Run()

	require.Equal(t, result.Fail, s1.Cases[0].Result)
	require.Equal(t, 1, s1.Score.Failed)
	require.True(t, eng.Failed)
	require.Contains(t, buf.String(), "t1")
}

func TestFailFastAbortsRemainder(t *testing.T) {
	cfg := config.Default()
	cfg.Run.FailFast = true
	eng, _ := newTestEngine(cfg)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("pass1", func(t *assert.Trap) {
		t.Require(true, "f", 1, "pass1", "ok")
	}))
	s1.Register(engine.NewCase("fail1", func(t *assert.Trap) {
		t.Require(false, "f", 2, "fail1", "nope")
	}))
	s1.Register(engine.NewCase("pass2", func(t *assert.Trap) {
		t.Require(true, "f", 3, "pass2", "ok")
	}))

	eng.Run()

	require.Equal(t, result.Pass, s1.Cases[0].Result)
	require.Equal(t, result.Fail, s1.Cases[1].Result)
	require.Equal(t, result.Empty, s1.Cases[2].Result)
	require.Equal(t, 1, s1.Score.Passed)
	require.Equal(t, 1, s1.Score.Failed)
}

func TestFilterWithWildcardExcludesNonMatching(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Name = config.NameFilter{Values: []string{"net_*"}, Wildcard: true}
	eng, _ := newTestEngine(cfg)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("net_a", func(t *assert.Trap) { t.Require(true, "f", 1, "net_a", "ok") }))
	s1.Register(engine.NewCase("net_b", func(t *assert.Trap) { t.Require(true, "f", 2, "net_b", "ok") }))
	s1.Register(engine.NewCase("db_a", func(t *assert.Trap) { t.Require(true, "f", 3, "db_a", "ok") }))

	eng.Run()

	require.Equal(t, result.Pass, s1.Cases[0].Result)
	require.Equal(t, result.Pass, s1.Cases[1].Result)
	require.Equal(t, result.Empty, s1.Cases[2].Result, "db_a was never selected, so never executed")
	require.Equal(t, 2, s1.Score.Passed)
	require.Equal(t, 2, s1.Score.TotalPossible)
}

func TestDeterministicShuffleRepeatsSamePermutation(t *testing.T) {
	build := func() []string {
		var order []string
		cfg := config.Default()
		cfg.Shuffle = config.ShufflePolicy{Seed: "42", Count: 5}
		eng, _ := newTestEngine(cfg)
		s1 := eng.RegisterSuite(engine.NewSuite("s1"))
		names := []string{"a", "b", "c", "d", "e"}
		for _, n := range names {
			name := n
			s1.Register(engine.NewCase(name, func(t *assert.Trap) {
				order = append(order, name)
				t.Require(true, "f", 1, name, "ok")
			}))
		}
		eng.Run()
		return order
	}

	first := build()
	second := build()
	require.Equal(t, first, second)
	require.Len(t, first, 5)
}

func TestTimeoutClassification(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Timeout = 1 // 1ns threshold, trivially exceeded
	eng, _ := newTestEngine(cfg)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("slow", func(t *assert.Trap) {
		time.Sleep(time.Millisecond)
		t.Require(true, "f", 1, "slow", "ok")
	}))

	eng.Run()

	require.Equal(t, result.Timeout, s1.Cases[0].Result)
	require.Greater(t, s1.Cases[0].ElapsedNs, uint64(1))
	require.Equal(t, 1, s1.Score.Timeout)
	require.Equal(t, 0, s1.Score.Passed)
}

func TestEmptyBodyClassifiesEmpty(t *testing.T) {
	eng, _ := newTestEngine(config.Default())
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("noop", func(t *assert.Trap) {}))

	eng.Run()

	require.Equal(t, result.Empty, s1.Cases[0].Result)
	require.Equal(t, 1, s1.Score.Empty)
}

func TestSkipPolicyMarksCaseSkipped(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Skip = "t2"
	eng, _ := newTestEngine(cfg)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("t1", func(t *assert.Trap) { t.Require(true, "f", 1, "t1", "ok") }))
	s1.Register(engine.NewCase("t2", func(t *assert.Trap) { t.Require(true, "f", 2, "t2", "ok") }))

	eng.Run()

	require.Equal(t, result.Pass, s1.Cases[0].Result)
	require.Equal(t, result.Skipped, s1.Cases[1].Result)
	require.Equal(t, 1, s1.Score.Skipped)
}

func TestEmptySuiteReportsZeroScoreboard(t *testing.T) {
	eng, _ := newTestEngine(config.Default())
	eng.RegisterSuite(engine.NewSuite("empty-suite"))

	eng.Run()
	eng.Summary("linux", "little")

	require.Equal(t, 0, eng.Score.TotalPossible)
	require.Equal(t, float64(0), eng.Score.SuccessRate())
}

func TestSuitePrevHashChainsToEngineHashAtRegistration(t *testing.T) {
	eng, _ := newTestEngine(config.Default())
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s2 := eng.RegisterSuite(engine.NewSuite("s2"))

	require.Equal(t, eng.Meta.Hash, s1.Meta.PrevHash)
	require.Equal(t, eng.Meta.Hash, s2.Meta.PrevHash)
}

func TestCaseRegistrationPrevHashChainsWithinSuite(t *testing.T) {
	eng, _ := newTestEngine(config.Default())
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	c1 := s1.Register(engine.NewCase("t1", func(t *assert.Trap) {}))
	c2 := s1.Register(engine.NewCase("t2", func(t *assert.Trap) {}))

	require.Equal(t, c1.Meta.Hash, c2.Meta.PrevHash)
}

func TestRunOnlyRestrictsToAllowList(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Only = []string{"net_*"}
	cfg.Run.Wildcard = true
	eng, _ := newTestEngine(cfg)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("net_a", func(t *assert.Trap) { t.Require(true, "f", 1, "net_a", "ok") }))
	s1.Register(engine.NewCase("db_a", func(t *assert.Trap) { t.Require(true, "f", 2, "db_a", "ok") }))

	eng.Run()

	require.Equal(t, result.Pass, s1.Cases[0].Result)
	require.Equal(t, result.Empty, s1.Cases[1].Result, "db_a is outside Run.Only, so never executed")
	require.Equal(t, 1, s1.Score.Passed)
}

type spyFormatter struct {
	report.NopFormatter
	suites []report.SuiteReport
}

func (s *spyFormatter) Suite(r report.SuiteReport) {
	s.suites = append(s.suites, r)
}

func TestFormatterReceivesSuiteReportPerSuite(t *testing.T) {
	spy := &spyFormatter{}
	eng := engine.New(config.Default(), spy)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s1.Register(engine.NewCase("t1", func(t *assert.Trap) { t.Require(true, "f", 1, "t1", "ok") }))
	s2 := eng.RegisterSuite(engine.NewSuite("s2"))
	s2.Register(engine.NewCase("t2", func(t *assert.Trap) { t.Require(false, "f", 2, "t2", "nope") }))

	eng.Run()

	require.Len(t, spy.suites, 2)
	require.Equal(t, "s1", spy.suites[0].SuiteName)
	require.Equal(t, 1, spy.suites[0].Score.Passed)
	require.Equal(t, "s2", spy.suites[1].SuiteName)
	require.Equal(t, 1, spy.suites[1].Score.Failed)
}

func TestFailFastAbortsMidRepeat(t *testing.T) {
	cfg := config.Default()
	cfg.Run.FailFast = true
	cfg.Run.Repeat = 5
	eng, _ := newTestEngine(cfg)
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	invocations := 0
	s1.Register(engine.NewCase("flaky", func(t *assert.Trap) {
		invocations++
		t.Require(false, "f", 1, "flaky", "always fails")
	}))

	eng.Run()

	require.Equal(t, 1, invocations, "fail-fast must stop the repeat loop on the first jump")
	require.Equal(t, result.Fail, s1.Cases[0].Result)
}

func TestEngineAggregateEqualsSumOfSuiteCounters(t *testing.T) {
	eng, _ := newTestEngine(config.Default())
	s1 := eng.RegisterSuite(engine.NewSuite("s1"))
	s2 := eng.RegisterSuite(engine.NewSuite("s2"))
	s1.Register(engine.NewCase("a", func(t *assert.Trap) { t.Require(true, "f", 1, "a", "ok") }))
	s2.Register(engine.NewCase("b", func(t *assert.Trap) { t.Require(false, "f", 2, "b", "nope") }))

	eng.Run()

	require.Equal(t, s1.Score.Passed+s2.Score.Passed, eng.Score.Passed)
	require.Equal(t, s1.Score.Failed+s2.Score.Failed, eng.Score.Failed)
}
