package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tierflow/tierflow/engine/trace"
)

func standardController(threshold float64) *TierController {
	return NewTierController(Config{Mode: ModeStandard, ScoreThreshold: threshold})
}

func TestTierController_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		current Tier
		score   float64
		want    Tier
	}{
		// threshold 1.5, detThreshold 0.9
		{"edge stays calm", TierEdge, 0.5, TierEdge},
		{"edge to control at det threshold", TierEdge, 0.9, TierControl},
		{"edge to control below escalation", TierEdge, 1.49, TierControl},
		{"edge escalates at threshold", TierEdge, 1.5, TierCloud},
		{"control escalates", TierControl, 2.0, TierCloud},
		{"control holds in band", TierControl, 1.0, TierControl},
		{"control de-escalates", TierControl, 0.89, TierEdge},
		{"cloud never de-escalates on calm", TierCloud, 0.0, TierCloud},
		{"cloud holds on spike", TierCloud, 3.0, TierCloud},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := standardController(1.5)
			events := trace.NewEventLog()
			got := ctrl.Decide(tt.current, tt.score, 1, events)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierController_BaselineFrozen(t *testing.T) {
	ctrl := NewTierController(Config{Mode: ModeBaseline, ScoreThreshold: 1.5})
	events := trace.NewEventLog()

	for _, score := range []float64{0, 1, 5, 100} {
		assert.Equal(t, TierEdge, ctrl.Decide(TierEdge, score, 1, events))
	}
	assert.Equal(t, 0, events.Len(), "baseline records no transition events")
	assert.Equal(t, 0, ctrl.Escalations())
}

func TestTierController_BaselineIgnoresForceEscalate(t *testing.T) {
	ctrl := NewTierController(Config{Mode: ModeBaseline, ScoreThreshold: 1.5, ForceEscalate: true})
	events := trace.NewEventLog()
	assert.Equal(t, TierEdge, ctrl.Decide(TierEdge, 0, 1, events))
}

func TestTierController_EffectiveThresholds(t *testing.T) {
	events := trace.NewEventLog()

	// aggressive: threshold 1.0 regardless of configured value
	aggressive := NewTierController(Config{Mode: ModeAggressive, ScoreThreshold: 3.0})
	assert.Equal(t, TierCloud, aggressive.Decide(TierEdge, 1.0, 1, events))

	// energy-saving: threshold 2.0
	saving := NewTierController(Config{Mode: ModeEnergySaving, ScoreThreshold: 0.5})
	assert.Equal(t, TierCloud, saving.Decide(TierEdge, 2.0, 1, events))
	saving2 := NewTierController(Config{Mode: ModeEnergySaving, ScoreThreshold: 0.5})
	assert.NotEqual(t, TierCloud, saving2.Decide(TierEdge, 1.9, 1, events))
}

func TestTierController_ForceEscalateConsumedOnce(t *testing.T) {
	ctrl := standardController(1.5)
	ctrl.ForceEscalate()
	events := trace.NewEventLog()

	got := ctrl.Decide(TierEdge, 0, 1, events)
	assert.Equal(t, TierCloud, got)
	assert.False(t, ctrl.ForceEscalatePending(), "flag must be consumed")
	assert.Equal(t, 0, ctrl.Escalations(), "manual override does not count as escalation")

	evs := events.Events()
	assert.Len(t, evs, 1)
	assert.Equal(t, trace.EventMigration, evs[0].Kind)
	assert.Contains(t, evs[0].Message, "manual override")
}

func TestTierController_ScoreEscalationEvent(t *testing.T) {
	ctrl := standardController(1.5)
	events := trace.NewEventLog()

	ctrl.Decide(TierEdge, 2.34, 7, events)

	assert.Equal(t, 1, ctrl.Escalations())
	evs := events.Events()
	assert.Len(t, evs, 1)
	assert.Equal(t, trace.EventMigration, evs[0].Kind)
	assert.Equal(t, 7, evs[0].UnitIndex)
	assert.True(t, strings.Contains(evs[0].Message, "2.34"), "migration event must include the score")
}

func TestTierController_HysteresisEvents(t *testing.T) {
	ctrl := standardController(1.5)
	events := trace.NewEventLog()

	assert.Equal(t, TierControl, ctrl.Decide(TierEdge, 1.0, 1, events))
	assert.Equal(t, TierEdge, ctrl.Decide(TierControl, 0.1, 2, events))

	evs := events.Events()
	assert.Len(t, evs, 2)
	assert.Equal(t, trace.EventInfo, evs[0].Kind)
	assert.Contains(t, evs[0].Message, "uncertainty plateau")
	assert.Equal(t, trace.EventInfo, evs[1].Kind)
	assert.Contains(t, evs[1].Message, "stability restored")
}

func TestApplyDamping(t *testing.T) {
	tests := []struct {
		name                           string
		tier                           Tier
		wantScore, wantDisp, wantDrift float64
	}{
		{"cloud", TierCloud, 0.4, 0.5, 0.3},
		{"control", TierControl, 0.7, 0.8, 1.0},
		{"edge untouched", TierEdge, 1.0, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, disp, drift := applyDamping(tt.tier, 1.0, 1.0, 1.0)
			assert.InDelta(t, tt.wantScore, score, 1e-12)
			assert.InDelta(t, tt.wantDisp, disp, 1e-12)
			assert.InDelta(t, tt.wantDrift, drift, 1e-12)
		})
	}
}

func TestTier_Valid(t *testing.T) {
	assert.True(t, TierEdge.Valid())
	assert.True(t, TierControl.Valid())
	assert.True(t, TierCloud.Valid())
	assert.False(t, Tier("fog").Valid())
}
