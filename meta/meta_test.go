package meta_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/fossillogic/pizza/meta"
)

func TestNewRecordDefaults(t *testing.T) {
	r := meta.NewRecord("")
	require.Equal(t, "unknown", r.Origin)
	require.Equal(t, "anonymous", r.Author)
	require.Empty(t, r.Hash)
}

func TestWithIdentityOverridesOnlyWhenSet(t *testing.T) {
	r := meta.NewRecord("")
	r = r.WithIdentity("", "alice")
	require.Equal(t, "unknown", r.Origin)
	require.Equal(t, "alice", r.Author)
}

func TestRegisterSetsHashOnce(t *testing.T) {
	r := meta.NewRecord("prevhash")
	r = r.Register("case-one", "criteria")
	require.NotEmpty(t, r.Hash)
	require.Equal(t, "prevhash", r.PrevHash)
}

func TestChainedRegistrationPrevHashEqualsPriorHash(t *testing.T) {
	first := meta.NewRecord("suite-hash")
	first = first.Register("t1", "c1")

	second := meta.NewRecord(first.Hash)
	second = second.Register("t2", "c2")

	require.Equal(t, first.Hash, second.PrevHash)
}

func TestReseaLUpdatesHashAndChain(t *testing.T) {
	r := meta.NewRecord("suite-hash")
	r = r.Register("t1", "c1")
	regHash := r.Hash

	r = r.Reseal("t1", "anonymous", "unknown", 1, 1000, "")
	require.NotEmpty(t, r.Hash)
	require.NotEqual(t, regHash, r.Hash)
	require.Equal(t, "suite-hash", r.PrevHash)
}

func TestSuiteSealChainsToEngineHash(t *testing.T) {
	r := meta.NewRecord("")
	sealed := meta.SuiteSeal(r, "suite-a", 12345, 3, 1, "engine-hash")
	require.Equal(t, "engine-hash", sealed.PrevHash)
	require.NotEmpty(t, sealed.Hash)
}

func TestEngineSealChainsToLastSuiteHash(t *testing.T) {
	r := meta.NewRecord("")
	sealed := meta.EngineSeal(r, 10, 8, [5]int{8, 1, 1, 0, 0}, "last-suite-hash")
	require.Equal(t, "last-suite-hash", sealed.PrevHash)
	require.NotEmpty(t, sealed.Hash)
}

func TestRecordDiffableWithGoCmp(t *testing.T) {
	a := meta.NewRecord("x")
	b := meta.NewRecord("x")
	b.CreatedAt = a.CreatedAt // normalize the only time-derived field
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("unexpected diff (-a +b):\n%s", diff)
	}
}
