package config_test

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/fossillogic/pizza/config"
)

// fixture mirrors the shape of testdata/sample.toml. This is test-only
// tooling (SPEC_FULL.md §10.3): production code never parses INI/TOML,
// only consumes an already-populated config.Config.
type fixture struct {
	DryRun bool   `toml:"dry_run"`
	Theme  string `toml:"theme"`
	Run    struct {
		FailFast  bool `toml:"fail_fast"`
		Repeat    int  `toml:"repeat"`
		TimeoutNS int64 `toml:"timeout_ns"`
	} `toml:"run"`
	Filter struct {
		NameValues   []string `toml:"name_values"`
		NameWildcard bool     `toml:"name_wildcard"`
	} `toml:"filter"`
	Sort struct {
		By    string `toml:"by"`
		Order string `toml:"order"`
	} `toml:"sort"`
	Shuffle struct {
		Seed   string `toml:"seed"`
		Count  int    `toml:"count"`
		SortBy string `toml:"sort_by"`
	} `toml:"shuffle"`
	Show struct {
		Display   string `toml:"display"`
		Verbosity string `toml:"verbosity"`
		Enabled   bool   `toml:"enabled"`
	} `toml:"show"`
}

func loadFixture(t *testing.T, path string) config.Config {
	t.Helper()
	var f fixture
	_, err := toml.DecodeFile(path, &f)
	require.NoError(t, err)

	return config.Config{
		DryRun: f.DryRun,
		Theme:  config.Theme(f.Theme),
		Run: config.RunPolicy{
			FailFast: f.Run.FailFast,
			Repeat:   f.Run.Repeat,
			Timeout:  uint64(f.Run.TimeoutNS),
		},
		Filter: config.FilterPolicy{
			Name: config.NameFilter{Values: f.Filter.NameValues, Wildcard: f.Filter.NameWildcard},
		},
		Sort: config.SortPolicy{
			By:    config.SortKey(f.Sort.By),
			Order: config.SortOrder(f.Sort.Order),
		},
		Shuffle: config.ShufflePolicy{
			Seed:   f.Shuffle.Seed,
			Count:  f.Shuffle.Count,
			SortBy: config.SortKey(f.Shuffle.SortBy),
		},
		Show: config.ShowPolicy{
			Display:   config.DisplayMode(f.Show.Display),
			Verbosity: config.Verbosity(f.Show.Verbosity),
			Enabled:   f.Show.Enabled,
		},
	}
}

func TestLoadSampleFixture(t *testing.T) {
	cfg := loadFixture(t, "testdata/sample.toml")

	require.Equal(t, config.ThemeTAP, cfg.Theme)
	require.True(t, cfg.Run.FailFast)
	require.Equal(t, 2, cfg.Run.Repeat)
	require.Equal(t, uint64(1_000_000_000), cfg.Run.Timeout)
	require.Equal(t, []string{"net_*"}, cfg.Filter.Name.Values)
	require.True(t, cfg.Filter.Name.Wildcard)
	require.Equal(t, config.SortByPriority, cfg.Sort.By)
	require.Equal(t, config.Descending, cfg.Sort.Order)
	require.Equal(t, "42", cfg.Shuffle.Seed)
	require.Equal(t, config.DisplayTree, cfg.Show.Display)
	require.Equal(t, config.VerbosityCI, cfg.Show.Verbosity)
}

func TestDefaultConfig(t *testing.T) {
	d := config.Default()
	require.Equal(t, config.ThemeFossil, d.Theme)
	require.Equal(t, 1, d.Run.Repeat)
	require.Equal(t, uint64(60_000_000_000), d.Run.Timeout)
	require.True(t, d.Show.Enabled)
}
