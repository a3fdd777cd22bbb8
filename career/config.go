package career

import (
	"fmt"
	"math/rand"
	"time"

	"idol-career/roster"
)

const DefaultPlayerName = "新人成员"

type Config struct {
	// Rules preset, see ClassicRules / ExtendedRules
	Rules  Ruleset
	Tables roster.Tables

	PlayerName string

	// Optional: narrative timeout (0 disables, the call may stall indefinitely)
	NarrativeTimeout time.Duration

	// RNG seed (0 => time-based). Ignored when Rand is set.
	Seed int64
	Rand Source

	// Optional clock / id generator for log entries
	Now   func() time.Time
	NewID func() string
}

// DefaultConfig classic rules, compiled-in tables.
func DefaultConfig() Config {
	return Config{
		Rules:      ClassicRules(),
		Tables:     roster.Default(),
		PlayerName: DefaultPlayerName,
	}
}

func (c Config) validate() error {
	if err := c.Rules.validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := c.Tables.Validate(c.Rules.RosterSize); err != nil {
		return fmt.Errorf("tables: %w", err)
	}
	if c.NarrativeTimeout < 0 {
		return fmt.Errorf("NarrativeTimeout must be >= 0")
	}
	return nil
}

func (c Config) source() Source {
	if c.Rand != nil {
		return c.Rand
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (c Config) resolver() Resolver {
	return Resolver{
		Rules:  c.Rules,
		Tables: c.Tables,
		Env:    Env{Rand: c.source(), Now: c.Now, NewID: c.NewID},
	}
}
