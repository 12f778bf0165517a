package core

import (
	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/store/db"

	"tally/internal/tally"
)

// Config tally config
type Config struct {
	App     App       `json:"app"`
	DB      db.Config `json:"db"`
	Penalty Penalty   `json:"penalty"`
	Admins  []string  `json:"admins"`
}

// App app config
type App struct {
	Location string `json:"location"`
	// ownership registry whose tokens account keys derive from
	RegistryID string `json:"registry_id"`
	// maturity window for active-credit rewards, in hours
	TimeGateHours int64 `json:"time_gate_hours"`
}

// Penalty default-settlement routing
type Penalty struct {
	tally.PenaltyRouting
	// position credited with the treasury share
	TreasuryAccount string `json:"treasury_account"`
}

// TimeGate the maturity window in seconds.
func (c *Config) TimeGate() int64 {
	hours := c.App.TimeGateHours
	if hours <= 0 || hours > tally.RingSize {
		hours = tally.RingSize
	}

	return hours * tally.SecondsPerHour
}

// IsAdmin check if the account is an admin
func (c *Config) IsAdmin(key string) bool {
	if len(c.Admins) == 0 {
		return false
	}

	return govalidator.IsIn(key, c.Admins...)
}

// Validate rejects configurations that would strand a penalty share.
func (c *Config) Validate() error {
	if c.Penalty.TotalBps() > 10000 {
		return ErrInvalidConfiguration
	}
	if c.Penalty.TreasuryBps > 0 && !govalidator.IsSHA256(c.Penalty.TreasuryAccount) {
		return ErrInvalidConfiguration
	}
	if c.App.TimeGateHours < 0 || c.App.TimeGateHours > tally.RingSize {
		return ErrInvalidConfiguration
	}

	return nil
}
