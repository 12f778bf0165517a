package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPlaceAndAdvance(t *testing.T) {
	var ring BucketRing
	base := int64(490_000) // arbitrary absolute hour

	ring.AdvanceTo(base)
	require.Equal(t, base+1, ring.StartHour)

	require.True(t, ring.Place(base+24, d("100")))
	require.True(t, ring.Place(base+12, d("50")))
	assert.True(t, ring.Pending().Equal(d("150")))

	// nothing folds before the first maturity hour
	assert.True(t, ring.AdvanceTo(base+11).IsZero())

	matured := ring.AdvanceTo(base+12)
	assert.True(t, matured.Equal(d("50")))

	matured = ring.AdvanceTo(base + 24)
	assert.True(t, matured.Equal(d("100")))
	assert.True(t, ring.Pending().IsZero())
}

func TestRingIdlePool(t *testing.T) {
	var ring BucketRing
	base := int64(490_000)
	ring.AdvanceTo(base)
	ring.Place(base+3, d("10"))
	ring.Place(base+24, d("20"))

	// far jump folds everything at once
	matured := ring.AdvanceTo(base + 1000)
	assert.True(t, matured.Equal(d("30")))
	assert.Equal(t, base+1001, ring.StartHour)
}

func TestRingRemove(t *testing.T) {
	var ring BucketRing
	base := int64(490_000)
	ring.AdvanceTo(base)
	ring.Place(base+5, d("40"))

	assert.False(t, ring.Remove(base+5, d("41")))
	assert.True(t, ring.Remove(base+5, d("15")))
	assert.True(t, ring.Pending().Equal(d("25")))

	// folded hours are no longer removable
	ring.AdvanceTo(base + 6)
	assert.False(t, ring.Remove(base+5, d("25")))
}

func TestRingRoundTrip(t *testing.T) {
	var ring BucketRing
	ring.AdvanceTo(500_000)
	ring.Place(500_010, d("7"))

	raw, err := ring.Value()
	require.NoError(t, err)

	var restored BucketRing
	require.NoError(t, restored.Scan(raw))
	assert.Equal(t, ring.StartHour, restored.StartHour)
	assert.True(t, restored.Pending().Equal(d("7")))
}
