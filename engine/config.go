package engine

import (
	"fmt"
	"time"
)

// Mode selects the tier-migration policy for a run.
type Mode string

const (
	// ModeBaseline freezes the tier at Edge for the entire run.
	ModeBaseline Mode = "baseline"
	// ModeStandard uses the configured score threshold.
	ModeStandard Mode = "standard"
	// ModeAggressive escalates early (effective threshold 1.0).
	ModeAggressive Mode = "aggressive"
	// ModeEnergySaving escalates late (effective threshold 2.0).
	ModeEnergySaving Mode = "energy-saving"
)

// Valid returns true if the mode is a known value.
func (m Mode) Valid() bool {
	switch m {
	case ModeBaseline, ModeStandard, ModeAggressive, ModeEnergySaving:
		return true
	default:
		return false
	}
}

const (
	// MinScoreThreshold and MaxScoreThreshold bound the configurable
	// escalation threshold in standard mode.
	MinScoreThreshold = 0.5
	MaxScoreThreshold = 3.0

	// DefaultSubUnitRunes is the sub-unit size each source chunk is
	// split into before processing.
	DefaultSubUnitRunes = 3

	// DefaultReplayCadence is the fixed inter-record delay during replay.
	DefaultReplayCadence = 50 * time.Millisecond
)

// Config groups the caller-supplied parameters of one run. Immutable for
// the duration of the run; ForceEscalate may additionally be asserted
// mid-run through Runner.ForceEscalate.
type Config struct {
	Mode           Mode
	ScoreThreshold float64 // used only in standard mode
	ForceEscalate  bool    // escalate to Cloud on the first unit
	Seed           int64
	SubUnitRunes   int                  // 1..4; 0 means DefaultSubUnitRunes
	Profiles       map[Tier]TierProfile // nil means DefaultProfiles()
	ReplayCadence  time.Duration        // 0 means DefaultReplayCadence
}

// Validate checks the configuration before a run starts.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Mode == ModeStandard {
		if c.ScoreThreshold < MinScoreThreshold || c.ScoreThreshold > MaxScoreThreshold {
			return fmt.Errorf("score threshold %.2f outside [%.1f, %.1f]",
				c.ScoreThreshold, MinScoreThreshold, MaxScoreThreshold)
		}
	}
	if c.SubUnitRunes < 0 || c.SubUnitRunes > 4 {
		return fmt.Errorf("sub-unit size %d outside [1, 4]", c.SubUnitRunes)
	}
	if c.Profiles != nil {
		for _, tier := range []Tier{TierEdge, TierControl, TierCloud} {
			if _, ok := c.Profiles[tier]; !ok {
				return fmt.Errorf("profile missing tier %q", tier)
			}
		}
	}
	return nil
}

// EffectiveThreshold returns the escalation threshold derived from the
// mode. The de-escalation threshold is always 0.6 of this value.
func (c Config) EffectiveThreshold() float64 {
	switch c.Mode {
	case ModeAggressive:
		return 1.0
	case ModeEnergySaving:
		return 2.0
	default:
		return c.ScoreThreshold
	}
}

// subUnitRunes returns the effective sub-unit size.
func (c Config) subUnitRunes() int {
	if c.SubUnitRunes == 0 {
		return DefaultSubUnitRunes
	}
	return c.SubUnitRunes
}

// replayCadence returns the effective replay cadence.
func (c Config) replayCadence() time.Duration {
	if c.ReplayCadence == 0 {
		return DefaultReplayCadence
	}
	return c.ReplayCadence
}

// profiles returns the effective tier profile table.
func (c Config) profiles() map[Tier]TierProfile {
	if c.Profiles == nil {
		return DefaultProfiles()
	}
	return c.Profiles
}
