package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"standard in range", Config{Mode: ModeStandard, ScoreThreshold: 1.5}, false},
		{"standard at lower bound", Config{Mode: ModeStandard, ScoreThreshold: 0.5}, false},
		{"standard at upper bound", Config{Mode: ModeStandard, ScoreThreshold: 3.0}, false},
		{"standard below range", Config{Mode: ModeStandard, ScoreThreshold: 0.49}, true},
		{"standard above range", Config{Mode: ModeStandard, ScoreThreshold: 3.01}, true},
		{"baseline ignores threshold", Config{Mode: ModeBaseline}, false},
		{"aggressive ignores threshold", Config{Mode: ModeAggressive, ScoreThreshold: 99}, false},
		{"energy-saving ignores threshold", Config{Mode: ModeEnergySaving}, false},
		{"unknown mode", Config{Mode: "turbo", ScoreThreshold: 1.5}, true},
		{"empty mode", Config{ScoreThreshold: 1.5}, true},
		{"sub-unit size too large", Config{Mode: ModeBaseline, SubUnitRunes: 5}, true},
		{"sub-unit size in range", Config{Mode: ModeBaseline, SubUnitRunes: 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProfiles(t *testing.T) {
	full := DefaultProfiles()
	assert.NoError(t, Config{Mode: ModeBaseline, Profiles: full}.Validate())

	partial := map[Tier]TierProfile{TierEdge: {Cost: 1}}
	assert.Error(t, Config{Mode: ModeBaseline, Profiles: partial}.Validate())
}

func TestConfig_EffectiveThreshold(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want float64
	}{
		{"standard uses configured", Config{Mode: ModeStandard, ScoreThreshold: 1.7}, 1.7},
		{"aggressive overrides", Config{Mode: ModeAggressive, ScoreThreshold: 2.5}, 1.0},
		{"energy-saving overrides", Config{Mode: ModeEnergySaving, ScoreThreshold: 0.6}, 2.0},
		{"baseline passes through", Config{Mode: ModeBaseline, ScoreThreshold: 1.1}, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.EffectiveThreshold())
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Mode: ModeStandard, ScoreThreshold: 1.5}
	assert.Equal(t, DefaultSubUnitRunes, cfg.subUnitRunes())
	assert.Equal(t, DefaultReplayCadence, cfg.replayCadence())
	assert.Equal(t, DefaultProfiles(), cfg.profiles())

	cfg.SubUnitRunes = 2
	assert.Equal(t, 2, cfg.subUnitRunes())
}

func TestMode_Valid(t *testing.T) {
	for _, m := range []Mode{ModeBaseline, ModeStandard, ModeAggressive, ModeEnergySaving} {
		assert.True(t, m.Valid())
	}
	assert.False(t, Mode("warp").Valid())
}
