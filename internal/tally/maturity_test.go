package tally

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gate = int64(24 * time.Hour / time.Second)

func TestTimeCredit(t *testing.T) {
	now := int64(1_700_000_000)
	assert.Equal(t, int64(0), TimeCredit(now, now, gate))
	assert.Equal(t, int64(3600), TimeCredit(now, now-3600, gate))
	assert.Equal(t, gate, TimeCredit(now, now-gate*10, gate))
	assert.Equal(t, int64(0), TimeCredit(now, 0, gate))
}

func TestActiveWeight(t *testing.T) {
	now := int64(1_700_000_000)
	p := d("500")
	assert.True(t, ActiveWeight(p, now, now-gate, gate).Equal(p))
	assert.True(t, ActiveWeight(p, now, now-gate+1, gate).IsZero())
}

func TestDiluteTimeCredit(t *testing.T) {
	// mature 100 units joined by 900 fresh keeps 1/10 of its credit
	credit := DiluteTimeCredit(d("100"), gate, d("900"))
	assert.Equal(t, gate/10, credit)

	// dust priming inherits almost nothing
	credit = DiluteTimeCredit(d("1"), gate, d("999999"))
	assert.Equal(t, int64(0), credit)

	// small additions keep most of the maturity
	credit = DiluteTimeCredit(d("1000"), gate, d("10"))
	require.True(t, credit > gate*98/100)
	require.True(t, credit < gate)

	assert.Equal(t, int64(0), DiluteTimeCredit(decimal.Zero, gate, decimal.Zero))
}

func TestDilutionProportionality(t *testing.T) {
	// credit loss matches fresh/(old+fresh) within flooring
	old, fresh := d("800"), d("200")
	credit := DiluteTimeCredit(old, gate, fresh)
	assert.Equal(t, gate*8/10, credit)
}
