package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tally/core"
	"tally/pkg/id"
)

func TestAccountOf(t *testing.T) {
	cfg := &core.Config{}
	cfg.App.RegistryID = "deed-registry"

	// a token id derives through the configured registry
	assert.Equal(t, id.AccountKey("deed-registry", "42"), accountOf(cfg, "", "42"))

	// the token wins when both are supplied
	assert.Equal(t, id.AccountKey("deed-registry", "42"), accountOf(cfg, "somekey", "42"))

	// a raw key passes through untouched
	assert.Equal(t, "somekey", accountOf(cfg, "somekey", ""))
}

func TestParseCategory(t *testing.T) {
	for name, want := range map[string]core.EncumbranceCategory{
		"locked":       core.CategoryLocked,
		"lent":         core.CategoryLent,
		"offer_escrow": core.CategoryOfferEscrow,
		"index":        core.CategoryIndex,
	} {
		category, err := parseCategory(name)
		assert.Nil(t, err)
		assert.Equal(t, want, category)
	}

	_, err := parseCategory("bogus")
	assert.NotNil(t, err)
}
