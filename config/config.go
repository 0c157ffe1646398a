// Package config holds the Configuration record consumed by the engine
// (spec.md §3). It is data only: no INI or flag parsing lives here —
// that is an external collaborator's job per spec.md §1's Non-goals.
package config

// SortKey enumerates the eight sort keys the selection pipeline
// recognizes (spec.md §4.5). An unrecognized key leaves order unchanged.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByTag      SortKey = "tag"
	SortByModule   SortKey = "module"
	SortByType     SortKey = "type"
	SortByRevision SortKey = "revision"
	SortByResult   SortKey = "result"
	SortByTime     SortKey = "time"
	SortByPriority SortKey = "priority"
)

// SortOrder is "asc" or "desc".
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// DisplayMode is the formatter's presentation mode.
type DisplayMode string

const (
	DisplayList  DisplayMode = "list"
	DisplayTree  DisplayMode = "tree"
	DisplayGraph DisplayMode = "graph"
)

// Verbosity is the formatter's verbosity level.
type Verbosity string

const (
	VerbosityPlain Verbosity = "plain"
	VerbosityCI    Verbosity = "ci"
	VerbosityDoge  Verbosity = "doge"
)

// Theme selects one of ten named output styles (spec.md §9, widened
// from nine to ten per SPEC_FULL.md §12.2).
type Theme string

const (
	ThemeFossil     Theme = "fossil"
	ThemeCatch      Theme = "catch"
	ThemeDoctest    Theme = "doctest"
	ThemeCpputest   Theme = "cpputest"
	ThemeTAP        Theme = "tap"
	ThemeGoogletest Theme = "googletest"
	ThemeUnity      Theme = "unity"
	ThemeAcutest    Theme = "acutest"
	ThemeMinUnit    Theme = "minunit"
	ThemeCMocka     Theme = "cmocka"
)

// NameFilter bundles a comma-separated-capable filter value with whether
// it should be interpreted as a wildcard glob (spec.md §4.5).
type NameFilter struct {
	Values   []string
	Wildcard bool
}

// Empty reports whether the filter is unset (spec.md §4.5 "missing
// filters are wildcards", i.e. they pass everything).
func (f NameFilter) Empty() bool {
	return len(f.Values) == 0
}

// RunPolicy controls fail-fast, repeat, skip, and (reserved) worker
// count.
type RunPolicy struct {
	FailFast bool
	// Only, if set, is an additional name allow-list applied after the
	// filter/sort/shuffle pipeline, honoring Wildcard; it layers on top
	// of FilterPolicy.Name rather than replacing it.
	Only     []string
	Wildcard bool
	// Skip names a single case to force-skip.
	Skip string
	// Repeat is the number of times to run each selected case; 0 means 1.
	Repeat int
	// WorkerCount is reserved and unused: parallel execution is an
	// explicit non-goal (spec.md §1, §5, §9).
	WorkerCount int
	// Timeout overrides the default 60-second classification threshold.
	// Zero means "use the default."
	Timeout uint64 // nanoseconds
}

// FilterPolicy is the name/suite/tag filter applied before sorting.
type FilterPolicy struct {
	Name  NameFilter
	Suite NameFilter
	Tag   NameFilter
}

// SortPolicy configures the stable sort stage.
type SortPolicy struct {
	By    SortKey
	Order SortOrder
}

// ShufflePolicy configures the seeded Fisher-Yates stage.
type ShufflePolicy struct {
	// Seed is parsed as a decimal integer; empty means "use the current
	// timestamp" (spec.md §4.5).
	Seed string
	// Count: 0 preserves order (spec.md §4.5 edge case).
	Count int
	// SortBy, if set, re-sorts stably after the shuffle (spec.md §4.5
	// "shuffle within equivalence classes").
	SortBy SortKey
}

// ShowPolicy controls formatter invocation.
type ShowPolicy struct {
	TargetNames []string
	ResultOnly  []string // zero or more result.Variant names, as strings to avoid import cycles
	Display     DisplayMode
	Verbosity   Verbosity
	Enabled     bool
}

// Config is the full Configuration record (spec.md §3), consumed by the
// engine, never produced by it.
type Config struct {
	DryRun       bool
	INIPath      string
	Run          RunPolicy
	Filter       FilterPolicy
	Sort         SortPolicy
	Shuffle      ShufflePolicy
	Show         ShowPolicy
	Theme        Theme
}

// Default returns a Config matching the source's documented defaults
// (common.c: G_PIZZA_TIMEOUT=60, G_PIZZA_THEME=PIZZA_THEME_FOSSIL).
func Default() Config {
	return Config{
		Run: RunPolicy{
			Repeat:  1,
			Timeout: 60_000_000_000,
		},
		Show: ShowPolicy{
			Display:   DisplayList,
			Verbosity: VerbosityPlain,
			Enabled:   true,
		},
		Theme: ThemeFossil,
	}
}
