package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountKey(t *testing.T) {
	key := AccountKey("deed-registry", "42")
	assert.Len(t, key, 64)
	// deterministic across calls, distinct across tokens
	assert.Equal(t, key, AccountKey("deed-registry", "42"))
	assert.NotEqual(t, key, AccountKey("deed-registry", "43"))
	assert.NotEqual(t, key, AccountKey("other-registry", "42"))
}

func TestTraceIDFrom(t *testing.T) {
	assert.Equal(t, TraceIDFrom("tally-agreement-1"), TraceIDFrom("tally-agreement-1"))
	assert.NotEqual(t, TraceIDFrom("a"), TraceIDFrom("b"))
}
