package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRejectsReentry(t *testing.T) {
	g := New()

	require.NoError(t, g.Enter("acc-1"))
	assert.Equal(t, ErrHeld, g.Enter("acc-1"))

	// other keys stay independent
	require.NoError(t, g.Enter("acc-2"))

	g.Exit("acc-1")
	assert.NoError(t, g.Enter("acc-1"))
}
