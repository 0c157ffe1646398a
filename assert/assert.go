// Package assert implements the non-local-return assertion protocol
// (spec.md §4.3, §9 "Non-local return from assertions") and the
// duplicate-failure anomaly detector.
//
// Go has no setjmp/longjmp. Per spec.md §9 ("Panic-catching is also
// acceptable where the host provides it"), a Trap installs a recover
// point, and Require panics with a private sentinel on failure; the
// runner recovers it at the suite boundary. This mirrors run_test's
// setjmp/longjmp pairing in the source almost exactly: Trap.Run plays
// the role of the setjmp call site, and a failing Require plays the
// role of longjmp.
package assert

import (
	"fmt"

	"github.com/fossillogic/pizza/hash"
)

// Failure is the payload carried by the panic a failing assertion
// raises. It is never meant to be recovered anywhere but inside
// Trap.Run; a caller that wants to observe it should use Trap.Run's
// return value instead of a bare recover().
type Failure struct {
	Message  string
	File     string
	Line     int
	Function string
	// Duplicate is the anomaly detector's running count of consecutive
	// identical failures (spec.md §4.3); zero if this is not a repeat.
	Duplicate int
	// MessageHash is the hash of (format template, rendered message),
	// distinct from the anomaly detector's (file+line+function, message)
	// hash: it lets a caller distinguish a repeated assertion that
	// rendered the same text from one whose arguments differed, the way
	// the source's pizza_test_assert_messagef computes its own separate
	// result hash alongside the detector's.
	MessageHash string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", f.File, f.Line, f.Function, f.Message)
}

// Step records one narrative marker (Given/When/Then/Skip), ported from
// the source's _given/_when/_then/_on_skip (SPEC_FULL.md §12.1). Purely
// descriptive: it never affects result classification.
type Step struct {
	Kind        string // "given", "when", "then", "skip"
	Description string
}

// Trap is installed once per case body invocation. It owns the
// per-case assertion counter (reset immediately before the body runs,
// per spec.md §3's invariant) and the body's narrative step log.
type Trap struct {
	detector *Detector

	count int
	steps []Step
}

// NewTrap creates a Trap backed by the given anomaly Detector (pass the
// same *Detector across every case in a run, matching the source's
// single process-static previous-hash buffer, spec.md §5).
func NewTrap(d *Detector) *Trap {
	return &Trap{detector: d}
}

// AssertionCount returns the number of Require calls evaluated so far,
// reset to zero at the start of each Run.
func (t *Trap) AssertionCount() int {
	return t.count
}

// Steps returns the narrative markers recorded during the current body.
func (t *Trap) Steps() []Step {
	return t.steps
}

// Given, When, Then record narrative markers; Skip records that the
// remainder of the body should be treated as an explicit skip note (it
// does not itself abort the body — the case runner decides skipping via
// configuration, per spec.md §4.6 step 5a).
func (t *Trap) Given(description string) { t.steps = append(t.steps, Step{"given", description}) }
func (t *Trap) When(description string)  { t.steps = append(t.steps, Step{"when", description}) }
func (t *Trap) Then(description string)  { t.steps = append(t.steps, Step{"then", description}) }
func (t *Trap) Skip(description string)  { t.steps = append(t.steps, Step{"skip", description}) }

// Require is the assertion primitive (spec.md §4.3 "assert"). If cond
// is false, it consults the anomaly detector (if any) and panics with
// *Failure — the Go analogue of a longjmp back to the runner's recover
// point. Require prints and emits nothing itself; the message, location
// and duplicate count travel only in the *Failure, and the engine passes
// only the duplicate count on to the formatter.
func (t *Trap) Require(cond bool, file string, line int, function string, format string, args ...any) {
	t.count++
	if cond {
		return
	}

	message := fmt.Sprintf(format, args...)
	dup := 0
	if t.detector != nil {
		dup = t.detector.Observe(file, line, function, message)
	}

	failure := &Failure{
		Message:     message,
		File:        file,
		Line:        line,
		Function:    function,
		Duplicate:   dup,
		MessageHash: hash.Hex(format, message),
	}
	panic(failure)
}

// Run invokes body under the trap, resetting the assertion counter and
// step log first (spec.md §3 invariant: "The assertion counter for a
// case is reset to zero immediately before its body runs"). It recovers
// a *Failure panic and returns it as jumped == true; any other panic
// value is re-raised, since only *Failure is a recognized non-local
// return (spec.md §9: "signal one Fail and continue").
func (t *Trap) Run(body func()) (failure *Failure, jumped bool) {
	t.count = 0
	t.steps = nil

	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Failure)
			if !ok {
				panic(r)
			}
			failure, jumped = f, true
		}
	}()

	body()
	return nil, false
}

// Detector is the process-static (single-writer) duplicate-assertion
// anomaly detector (spec.md §4.3, §5, §9 "Process-static anomaly
// detector"). One Detector is shared across an entire engine run, the
// same way the source keeps one previous-hash buffer and counter.
type Detector struct {
	prevHash string
	count    int
}

// NewDetector returns a fresh Detector with no prior observation.
func NewDetector() *Detector {
	return &Detector{}
}

// Observe hashes (file+line+function, message) and compares it against
// the stored previous observation. Equal increments and returns the
// running duplicate count; different resets the counter to zero and
// stores the new hash (spec.md §4.3).
func (d *Detector) Observe(file string, line int, function string, message string) int {
	key := fmt.Sprintf("%s:%d:%s", file, line, function)
	h := hash.Hex(key, message)
	if h == d.prevHash {
		d.count++
	} else {
		d.count = 0
		d.prevHash = h
	}
	return d.count
}
