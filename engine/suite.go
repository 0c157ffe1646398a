package engine

import (
	"github.com/fossillogic/pizza/meta"
	"github.com/fossillogic/pizza/result"
)

// Suite is an ordered, grow-on-demand collection of cases sharing
// setup/teardown hooks (spec.md §3). The case slice grows by ordinary
// append, matching Go's own doubling-capacity growth strategy and
// satisfying the "dynamic suite/case containers" design note (spec.md
// §9) without a hand-rolled capacity doubler.
type Suite struct {
	Name string

	Setup    Hook
	Teardown Hook

	Cases []*Case

	ElapsedNs uint64
	Score     result.Score
	Meta      meta.Record

	// lastResultHash is the most recent case's result-time hash in this
	// suite, chained forward at the next case's Reseal (spec.md §4.7).
	lastResultHash string
}

// NewSuite returns an empty Suite.
func NewSuite(name string) *Suite {
	return &Suite{Name: name}
}

// Register appends a case to the suite, stamping its suiteName and
// computing its registration-time metadata hash chained to the
// previous case's hash in this suite (or the suite's own hash, if this
// is the first case), per spec.md §4.7.
func (s *Suite) Register(c *Case) *Case {
	c.suiteName = s.Name

	prevHash := s.Meta.Hash
	if n := len(s.Cases); n > 0 {
		prevHash = s.Cases[n-1].Meta.Hash
	}

	c.Meta = newMetaRecord(prevHash).Register(c.Name, c.Criteria)
	s.Cases = append(s.Cases, c)
	return c
}
