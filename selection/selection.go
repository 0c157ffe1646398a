// Package selection implements the filter → sort → shuffle pipeline
// applied to a suite's case list before execution (spec.md §4.5).
//
// It is decoupled from the engine's concrete Case type via the Item
// interface, so engine can depend on selection without selection
// depending back on engine.
package selection

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fossillogic/pizza/config"
)

// Item is the minimal view the pipeline needs of a case.
type Item interface {
	CaseName() string
	SuiteName() string
	Tags() []string
	Module() string
	Type() string
	Revision() string
	ResultKey() string
	TimeNanos() uint64
	Priority() int
}

// Match reports whether name satisfies filter, a single comma-separated
// filter value or glob (spec.md §4.5, §8: "Comma-list filter `foo,bar`
// matches a case iff its name is `foo` or `bar`").
func Match(filter string, wildcard bool, name string) bool {
	if filter == "" {
		return true
	}
	for _, alt := range strings.Split(filter, ",") {
		if alt == "" {
			continue
		}
		if wildcard && strings.Contains(alt, "*") {
			if globMatch(alt, name) {
				return true
			}
			continue
		}
		if alt == name {
			return true
		}
	}
	return false
}

// globMatch implements `*`-only, case-sensitive, byte-wise glob
// matching (spec.md §9 "Wildcard matching"): `*` matches any substring,
// possibly empty; there is no `?` or bracket class support.
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	last := len(parts) - 1
	if !strings.HasSuffix(s, parts[last]) {
		return false
	}
	if last > 0 {
		s = s[:len(s)-len(parts[last])]
	}

	for _, mid := range parts[1:last] {
		if mid == "" {
			continue
		}
		idx := strings.Index(s, mid)
		if idx < 0 {
			return false
		}
		s = s[idx+len(mid):]
	}
	return true
}

func matchTag(filter string, wildcard bool, tags []string) bool {
	if filter == "" {
		return true
	}
	for _, alt := range strings.Split(filter, ",") {
		if alt == "" {
			continue
		}
		for _, tag := range tags {
			if wildcard && strings.Contains(alt, "*") {
				if globMatch(alt, tag) {
					return true
				}
				continue
			}
			if strings.Contains(tag, alt) {
				return true
			}
		}
	}
	return false
}

func matchNameFilter(f config.NameFilter, name string) bool {
	if f.Empty() {
		return true
	}
	return Match(strings.Join(f.Values, ","), f.Wildcard, name)
}

func matchTagFilter(f config.NameFilter, tags []string) bool {
	if f.Empty() {
		return true
	}
	return matchTag(strings.Join(f.Values, ","), f.Wildcard, tags)
}

// Filter retains items whose name/suite/tags satisfy policy (spec.md
// §4.5 step 1). Missing filters pass everything; an empty input slice
// returns an empty slice.
func Filter[T Item](items []T, policy config.FilterPolicy) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !matchNameFilter(policy.Name, it.CaseName()) {
			continue
		}
		if !matchNameFilter(policy.Suite, it.SuiteName()) {
			continue
		}
		if !matchTagFilter(policy.Tag, it.Tags()) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Sort stably reorders items in place by policy.By (spec.md §4.5 step
// 2). An unrecognized key leaves order unchanged; Order == Descending
// reverses the comparator.
func Sort[T Item](items []T, policy config.SortPolicy) {
	less := comparator[T](policy.By)
	if less == nil {
		return
	}
	desc := policy.Order == config.Descending
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func comparator[T Item](key config.SortKey) func(a, b T) bool {
	switch key {
	case config.SortByName:
		return func(a, b T) bool { return a.CaseName() < b.CaseName() }
	case config.SortByTag:
		return func(a, b T) bool { return firstTag(a) < firstTag(b) }
	case config.SortByModule:
		return func(a, b T) bool { return a.Module() < b.Module() }
	case config.SortByType:
		return func(a, b T) bool { return a.Type() < b.Type() }
	case config.SortByRevision:
		return func(a, b T) bool { return a.Revision() < b.Revision() }
	case config.SortByResult:
		return func(a, b T) bool { return a.ResultKey() < b.ResultKey() }
	case config.SortByTime:
		return func(a, b T) bool { return a.TimeNanos() < b.TimeNanos() }
	case config.SortByPriority:
		return func(a, b T) bool { return a.Priority() < b.Priority() }
	default:
		return nil
	}
}

func firstTag(it Item) string {
	tags := it.Tags()
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

// Shuffle reorders items in place with a seeded Fisher-Yates pass, then
// optionally re-sorts stably by policy.SortBy (spec.md §4.5 step 3,
// "shuffle within equivalence classes"). Count == 0 preserves order.
// An empty Seed uses the current timestamp, matching the source's
// fallback, and is the sole source of non-determinism once chosen.
func Shuffle[T Item](items []T, policy config.ShufflePolicy) {
	if policy.Count == 0 || len(items) < 2 {
		return
	}

	seed := parseSeed(policy.Seed)
	rng := rand.New(rand.NewSource(seed))

	n := len(items)
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}

	if policy.SortBy != "" {
		Sort(items, config.SortPolicy{By: policy.SortBy, Order: config.Ascending})
	}
}

func parseSeed(seed string) int64 {
	if seed == "" {
		return time.Now().UnixNano()
	}
	n, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return time.Now().UnixNano()
	}
	return n
}

// Pipeline runs Filter, Sort, and Shuffle in sequence, matching the
// engine's step 4 invocation order (spec.md §4.6).
func Pipeline[T Item](items []T, cfg config.Config) []T {
	filtered := Filter(items, cfg.Filter)
	Sort(filtered, cfg.Sort)
	Shuffle(filtered, cfg.Shuffle)
	return filtered
}
