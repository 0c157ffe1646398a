package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"

	"github.com/fossillogic/pizza/config"
)

// style captures the per-theme decoration: a glyph used as the case
// bullet/prefix and a color tag applied to the case name. The source
// (test.c's fossil_pizza_show_cases) expands this as ten near-identical
// switch cases per display mode; here it is a small declarative table
// consulted by one rendering routine — a DRY simplification of the
// source's macro-expanded style, not a change in the visible styling
// itself.
type style struct {
	Glyph     string
	NameColor string
	CI        string // prefix used in "ci" verbosity, e.g. "::TEST::"
}

var styles = map[Theme]style{
	config.ThemeFossil:     {Glyph: "├─", NameColor: "cyan", CI: "::TEST::"},
	config.ThemeCatch:      {Glyph: "-", NameColor: "green", CI: "[CASE]"},
	config.ThemeDoctest:    {Glyph: "*", NameColor: "blue", CI: "[doctest]"},
	config.ThemeCpputest:   {Glyph: "[CASE]", NameColor: "magenta", CI: "::CASE::"},
	config.ThemeTAP:        {Glyph: "#", NameColor: "yellow", CI: "# ::CASE::"},
	config.ThemeGoogletest: {Glyph: "[----------]", NameColor: "blue", CI: "[  CASE   ]"},
	config.ThemeUnity:      {Glyph: "Unity Case:", NameColor: "green", CI: "::UNITY::"},
	config.ThemeAcutest:    {Glyph: ">", NameColor: "white", CI: "::ACUTEST::"},
	config.ThemeMinUnit:    {Glyph: ".", NameColor: "white", CI: "::MINUNIT::"},
	config.ThemeCMocka:     {Glyph: "[ RUN ]", NameColor: "cyan", CI: "::CMOCKA::"},
}

var colorCodes = map[string]string{
	"reset":   "\x1b[0m",
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
	"bold":    "\x1b[1m",
}

// colorize wraps s in the named color's ANSI escapes if useColor is
// true; otherwise it returns s unchanged (no escapes leak into piped
// output, matching common CI practice).
func colorize(useColor bool, name, s string) string {
	if !useColor {
		return s
	}
	code, ok := colorCodes[name]
	if !ok {
		return s
	}
	return code + s + colorCodes["reset"]
}

// TextFormatter renders records as styled plain text, dispatching on
// Theme/Display/Verbosity carried by each CaseReport (spec.md §6, §9).
// Color output is auto-detected via go-isatty and wrapped through
// go-colorable so that Windows consoles without native ANSI support
// still render color, matching the pairing these two libraries form in
// izerolog's own indirect dependency set.
type TextFormatter struct {
	Writer   io.Writer
	useColor bool
}

// NewTextFormatter wraps w for ANSI-safe output (using go-colorable)
// only when w is an *os.File pointing at a terminal (go-isatty);
// otherwise color is disabled and w is used as-is, so piping to a file
// or a non-terminal *os.File never emits raw escape codes.
func NewTextFormatter(w io.Writer) *TextFormatter {
	f := &TextFormatter{Writer: w}
	if file, ok := w.(*os.File); ok {
		fd := file.Fd()
		f.useColor = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		if f.useColor {
			f.Writer = colorable.NewColorable(file)
		}
	}
	return f
}

// indent returns the bullet prefix for r.Display (spec.md §3 ShowPolicy
// Display: list/tree/graph). list uses the theme's own glyph unmodified;
// tree nests one level under its suite; graph renders as a node in an
// edge-list sketch. None of this affects result classification — it is
// presentation only, chosen by the formatter, per spec.md §9.
func indent(display config.DisplayMode, suite string) string {
	switch display {
	case config.DisplayTree:
		return "  └─ "
	case config.DisplayGraph:
		return "(" + suite + ")-->"
	default:
		return "  "
	}
}

func (f *TextFormatter) Case(r CaseReport) {
	st := styles[r.Theme]
	name := colorize(f.useColor, st.NameColor, r.CaseName)
	prefix := indent(r.Display, r.SuiteName)

	switch r.Verbosity {
	case config.VerbosityCI:
		fmt.Fprintf(f.Writer, "%s%s %s\n", prefix, st.CI, r.CaseName)
		fmt.Fprintf(f.Writer, "    ::TAGS:: %s\n", strings.Join(r.Tags, ","))
		fmt.Fprintf(f.Writer, "    ::CRITERIA:: %s\n", r.Criteria)
		fmt.Fprintf(f.Writer, "    ::TIME:: %s\n", FormatNs(r.ElapsedNs))
		fmt.Fprintf(f.Writer, "    ::RESULT:: %s\n", r.Result)
	case config.VerbosityDoge:
		fmt.Fprintf(f.Writer, "%s%s %s [test case]\n", prefix, st.Glyph, name)
		fmt.Fprintf(f.Writer, "    Tags    : %s [with tag]\n", strings.Join(r.Tags, ","))
		fmt.Fprintf(f.Writer, "    Criteria: %s [given criteria]\n", r.Criteria)
		fmt.Fprintf(f.Writer, "    Time    : %s [the time]\n", FormatNs(r.ElapsedNs))
		fmt.Fprintf(f.Writer, "    Result  : %s [the result]\n", colorize(f.useColor, "green", r.Result.String()))
	default: // plain
		fmt.Fprintf(f.Writer, "%s%s %s\n", prefix, st.Glyph, name)
		fmt.Fprintf(f.Writer, "    Tags    : %s\n", strings.Join(r.Tags, ","))
		fmt.Fprintf(f.Writer, "    Criteria: %s\n", r.Criteria)
		fmt.Fprintf(f.Writer, "    Time    : %s\n", FormatNs(r.ElapsedNs))
		fmt.Fprintf(f.Writer, "    Result  : %s\n", colorize(f.useColor, "green", r.Result.String()))
	}

	if r.Duplicate > 0 {
		fmt.Fprintf(f.Writer, "    Duplicate or similar assertion detected [Anomaly Count: %d]\n", r.Duplicate)
	}
	for _, step := range r.Steps {
		fmt.Fprintf(f.Writer, "      %s\n", step)
	}
}

func (f *TextFormatter) Suite(r SuiteReport) {
	fmt.Fprintf(f.Writer, "Suite %s: passed=%d failed=%d skipped=%d timeout=%d unexpected=%d empty=%d elapsed=%s\n",
		r.SuiteName, r.Score.Passed, r.Score.Failed, r.Score.Skipped, r.Score.Timeout, r.Score.Unexpected, r.Score.Empty, FormatNs(r.ElapsedNs))
}

func (f *TextFormatter) Heading(r Heading) {
	fmt.Fprintf(f.Writer, "Pizza run on %s (%s-endian)\n", r.HostOS, r.Endianness)
}

func (f *TextFormatter) Scoreboard(r Scoreboard) {
	fmt.Fprintf(f.Writer, "Suites: %d  Tests: %d  Passed: %d  Failed: %d  Skipped: %d  Timeout: %d  Unexpected: %d  Empty: %d  Success: %.1f%%\n",
		r.SuiteCount, r.TestCount, r.Score.Passed, r.Score.Failed, r.Score.Skipped, r.Score.Timeout, r.Score.Unexpected, r.Score.Empty, r.Score.SuccessRate())
}

func (f *TextFormatter) Timing(r Timing) {
	fmt.Fprintf(f.Writer, "Elapsed %02d:%02d:%02d.%06d,%03d  avg/suite=%dns (%.3fus, %.6fms)  avg/test=%dns (%.3fus, %.6fms)\n",
		r.Total.Hours, r.Total.Minutes, r.Total.Seconds, r.Total.Microseconds, r.Total.Nanoseconds,
		r.AvgPerSuiteNs, r.AvgPerSuiteUs(), r.AvgPerSuiteMs(),
		r.AvgPerTestNs, r.AvgPerTestUs(), r.AvgPerTestMs())
}

func (f *TextFormatter) Feedback(r Feedback) {
	fmt.Fprintln(f.Writer, r.Message)
}

var _ Formatter = (*TextFormatter)(nil)
