// Command pizzademo wires config, engine, and report together as a
// worked example. It builds its Configuration record directly in Go —
// CLI/INI parsing is an external collaborator's job (spec.md §1) — and
// runs two suites, one themed text sink and one structured zerolog
// sink side by side, matching the fan-out a real caller would do when
// it wants both a human console and a machine-readable audit log.
package main

import (
	"os"
	"runtime"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/fossillogic/pizza/assert"
	"github.com/fossillogic/pizza/config"
	"github.com/fossillogic/pizza/engine"
	"github.com/fossillogic/pizza/report"
)

// multiFormatter fans every record out to each of its members, used
// here to drive the themed console sink and the structured log sink
// from a single engine run.
type multiFormatter []report.Formatter

func (m multiFormatter) Case(r report.CaseReport) {
	for _, f := range m {
		f.Case(r)
	}
}
func (m multiFormatter) Suite(r report.SuiteReport) {
	for _, f := range m {
		f.Suite(r)
	}
}
func (m multiFormatter) Heading(r report.Heading) {
	for _, f := range m {
		f.Heading(r)
	}
}
func (m multiFormatter) Scoreboard(r report.Scoreboard) {
	for _, f := range m {
		f.Scoreboard(r)
	}
}
func (m multiFormatter) Timing(r report.Timing) {
	for _, f := range m {
		f.Timing(r)
	}
}
func (m multiFormatter) Feedback(r report.Feedback) {
	for _, f := range m {
		f.Feedback(r)
	}
}

func main() {
	cfg := config.Default()
	cfg.Theme = config.ThemeGoogletest
	cfg.Show.Verbosity = config.VerbosityPlain

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	formatter := multiFormatter{
		report.NewTextFormatter(os.Stdout),
		report.ZerologSink{Logger: logger},
	}

	eng := engine.New(cfg, formatter)

	arithmetic := eng.RegisterSuite(engine.NewSuite("arithmetic"))
	arithmetic.Register(engine.NewCase("adds_two_numbers", func(t *assert.Trap) {
		t.Given("two positive integers")
		t.When("they are added")
		t.Then("the sum matches the expected total")
		t.Require(2+2 == 4, "main.go", 0, "adds_two_numbers", "expected 2+2 to equal 4")
	}, engine.WithTags("fast", "arith"), engine.WithCriteria("2+2=4")))

	arithmetic.Register(engine.NewCase("deliberately_fails", func(t *assert.Trap) {
		t.Require(1 == 2, "main.go", 0, "deliberately_fails", "deliberately false for the demo")
	}, engine.WithCriteria("demonstrates a Fail classification")))

	networking := eng.RegisterSuite(engine.NewSuite("networking"))
	networking.Register(engine.NewCase("net_dial_succeeds", func(t *assert.Trap) {
		t.Require(true, "main.go", 0, "net_dial_succeeds", "dial ok")
	}, engine.WithTags("net")))
	networking.Register(engine.NewCase("db_connect_succeeds", func(t *assert.Trap) {
		t.Require(true, "main.go", 0, "db_connect_succeeds", "connect ok")
	}, engine.WithTags("db")))

	eng.Run()
	eng.Summary(runtime.GOOS, endianness())

	if eng.Failed {
		os.Exit(1)
	}
}

func endianness() string {
	var i int32 = 1
	b := (*[4]byte)(unsafe.Pointer(&i))
	if b[0] == 1 {
		return "little"
	}
	return "big"
}
