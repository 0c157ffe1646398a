package hash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fossillogic/pizza/hash"
)

func TestSumLength(t *testing.T) {
	sum := hash.Sum("case-a", "")
	assert.Len(t, sum, hash.Size)
}

func TestHexIsLowercase(t *testing.T) {
	h := hash.Hex("suite-a", "deadbeef")
	require.Len(t, h, hash.Size*2)
	for _, r := range h {
		assert.True(t, (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f'), "unexpected rune %q", r)
	}
}

func TestSumAcceptsEmptyInputs(t *testing.T) {
	assert.NotPanics(t, func() {
		hash.Sum("", "")
	})
}

// Within one process, repeated calls with identical inputs are not
// guaranteed to be equal because the nonce is re-sampled on every call
// (spec.md §4.1: "a per-call nonce from the same time source"). The
// in-process guarantee the spec makes is determinism of the *salt*, not
// of the digest across repeated calls with the same input. We assert
// the salt-driven component indirectly: two distinct inputs do not
// collide, which is the practical anomaly-
// detection property the assert package relies on.
func TestSumDistinctInputsLikelyDiffer(t *testing.T) {
	a := hash.Sum("alpha", "")
	b := hash.Sum("beta", "")
	assert.NotEqual(t, a, b)
}
