// Package meta implements the metadata record (spec.md §3) and the
// registration-time / result-time hash binding (spec.md §4.7).
package meta

import (
	"fmt"
	"time"

	"github.com/fossillogic/pizza/hash"
)

// Record is the metadata attached to every case, suite, and engine.
type Record struct {
	Hash       string
	PrevHash   string
	CreatedAt  int64 // epoch seconds
	Origin     string
	Author     string
	TrustScore float64
	Confidence float64
	Immutable  bool
	Signature  string
}

// NewRecord returns a Record with defaulted identity fields (spec.md
// §3: origin defaults to "unknown", author to "anonymous") and the
// given prevHash. The hash field is left empty; callers set it via
// Register or Reseal.
func NewRecord(prevHash string) Record {
	return Record{
		PrevHash:  prevHash,
		CreatedAt: time.Now().Unix(),
		Origin:    "unknown",
		Author:    "anonymous",
	}
}

// WithIdentity overrides Origin/Author if non-empty, leaving the
// defaults otherwise.
func (r Record) WithIdentity(origin, author string) Record {
	if origin != "" {
		r.Origin = origin
	}
	if author != "" {
		r.Author = author
	}
	return r
}

// Register computes and sets the registration-time hash from
// (name, criteria, author) chained to r.PrevHash, and returns the
// updated record (spec.md §4.7 "At registration"). This is the one
// assignment the invariant in spec.md §3 calls "set exactly once at
// registration."
func (r Record) Register(name, criteria string) Record {
	input := fmt.Sprintf("%s|%s|%s", name, criteria, r.Author)
	r.Hash = hash.Hex(input, r.PrevHash)
	return r
}

// Reseal recomputes the hash at result time from
// (name, author, origin, resultCode, trustScore, confidence, resultTimestamp)
// chained to chainPrev (the previous case's result-time hash, or this
// record's own registration-time PrevHash if there is none), and
// returns the updated record (spec.md §4.7 "At result time"). This is
// the invariant's "replaced exactly once at result time": the old hash
// is simply overwritten by ordinary Go value assignment — Go's garbage
// collector makes the source's explicit free-then-replace discipline
// unnecessary.
func (r Record) Reseal(name, author, origin string, resultCode int, resultTimestamp int64, chainPrev string) Record {
	if chainPrev == "" {
		chainPrev = r.PrevHash
	}
	input := fmt.Sprintf("%s|%s|%s|%d|%f|%f|%d", name, author, origin, resultCode, r.TrustScore, r.Confidence, resultTimestamp)
	r.Hash = hash.Hex(input, chainPrev)
	r.PrevHash = chainPrev
	return r
}

// SuiteSeal computes a suite's finalization hash from
// (suiteName, author, origin, elapsedNs, passed, failed) chained to
// engineHash, matching spec.md §4.6 step 8.
func SuiteSeal(r Record, suiteName string, elapsedNs uint64, passed, failed int, engineHash string) Record {
	input := fmt.Sprintf("%s|%s|%s|%d|%d|%d", suiteName, r.Author, r.Origin, elapsedNs, passed, failed)
	r.PrevHash = engineHash
	r.Hash = hash.Hex(input, engineHash)
	return r
}

// EngineSeal computes the engine's finalization hash from
// (author, origin, totalPossible, totalScore, aggregate counters)
// chained to lastSuiteHash, matching spec.md §4.6's final step.
func EngineSeal(r Record, totalPossible, totalScore int, counters [5]int, lastSuiteHash string) Record {
	input := fmt.Sprintf("%s|%s|%d|%d|%v", r.Author, r.Origin, totalPossible, totalScore, counters)
	r.PrevHash = lastSuiteHash
	r.Hash = hash.Hex(input, lastSuiteHash)
	return r
}
