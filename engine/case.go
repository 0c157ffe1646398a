// Package engine implements the execution engine core (spec.md §4.6):
// suite/case lifecycle, fail-fast, repeat, timeout classification, and
// the metadata hash chain tying it all together. It wires together
// hash, chrono, result, config, assert, selection, meta, and report.
package engine

import (
	"github.com/fossillogic/pizza/assert"
	"github.com/fossillogic/pizza/meta"
	"github.com/fossillogic/pizza/result"
)

// Body is a case's runnable. It receives the Trap installed for this
// invocation so it can call Require (and Given/When/Then/Skip) on it.
type Body func(t *assert.Trap)

// Hook is a setup or teardown callable; either may be nil.
type Hook func()

// Case is one registered unit of execution (spec.md §3). Fields that
// also serve as selection.Item accessors are unexported with matching
// getter methods, since Go cannot have a field and a method share a
// name on the same type.
type Case struct {
	Name     string
	Criteria string

	Setup    Hook
	Teardown Hook
	Body     Body

	ElapsedNs uint64
	Result    result.Variant
	Duplicate int
	Meta      meta.Record
	Steps     []assert.Step

	tags      []string
	priority  int
	suiteName string
	module    string
	typ       string
	revision  string
}

// NewCase returns a Case ready for registration, applying opts in
// order.
func NewCase(name string, body Body, opts ...CaseOption) *Case {
	c := &Case{Name: name, Body: body}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CaseOption configures optional Case fields at registration.
type CaseOption func(*Case)

// WithTags sets the case's tags.
func WithTags(tags ...string) CaseOption {
	return func(c *Case) { c.tags = tags }
}

// WithCriteria sets the case's human-readable criteria description.
func WithCriteria(criteria string) CaseOption {
	return func(c *Case) { c.Criteria = criteria }
}

// WithPriority sets the case's priority (lower sorts first under
// config.SortByPriority).
func WithPriority(p int) CaseOption {
	return func(c *Case) { c.priority = p }
}

// WithSetup and WithTeardown attach per-case hooks.
func WithSetup(h Hook) CaseOption    { return func(c *Case) { c.Setup = h } }
func WithTeardown(h Hook) CaseOption { return func(c *Case) { c.Teardown = h } }

// WithClassification sets the module/type/revision fields consulted by
// the selection pipeline's module/type/revision sort keys; none of
// these affect execution semantics.
func WithClassification(module, typ, revision string) CaseOption {
	return func(c *Case) {
		c.module = module
		c.typ = typ
		c.revision = revision
	}
}

// selection.Item implementation, so *Case can flow through the
// selection pipeline without that package depending back on engine.

func (c *Case) CaseName() string  { return c.Name }
func (c *Case) SuiteName() string { return c.suiteName }
func (c *Case) Tags() []string    { return c.tags }
func (c *Case) Module() string    { return c.module }
func (c *Case) Type() string      { return c.typ }
func (c *Case) Revision() string  { return c.revision }
func (c *Case) ResultKey() string { return c.Result.String() }
func (c *Case) TimeNanos() uint64 { return c.ElapsedNs }
func (c *Case) Priority() int     { return c.priority }
