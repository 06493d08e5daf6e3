package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/tierflow/tierflow/engine/trace"
)

// Tier is one of the ordered execution destinations, increasing in cost
// and capability.
type Tier string

const (
	TierEdge    Tier = "edge"
	TierControl Tier = "control"
	TierCloud   Tier = "cloud"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierEdge, TierControl, TierCloud:
		return true
	default:
		return false
	}
}

// deEscalationFactor derives the Control/Edge boundary from the
// escalation threshold.
const deEscalationFactor = 0.6

// TierController decides the execution tier for each unit from the
// composite instability score. It is a hysteretic state machine: the
// only state is the current tier (held by the caller's RunState), plus
// the consumed-once force-escalate flag and the escalation counter.
//
// Escalation to Cloud is one-way: no rule brings the tier back to
// Control or Edge for the rest of the run. Callers must not assume
// recovery from Cloud.
type TierController struct {
	mode           Mode
	scoreThreshold float64
	detThreshold   float64

	// forceEscalate is asserted by an actor outside the run loop and
	// must be consumed exactly once, hence the atomic read-and-clear.
	forceEscalate atomic.Bool

	escalations int
}

// NewTierController derives effective thresholds from the config.
func NewTierController(cfg Config) *TierController {
	threshold := cfg.EffectiveThreshold()
	c := &TierController{
		mode:           cfg.Mode,
		scoreThreshold: threshold,
		detThreshold:   deEscalationFactor * threshold,
	}
	c.forceEscalate.Store(cfg.ForceEscalate)
	return c
}

// ForceEscalate asserts the manual-override flag. The next unit's
// decision consumes it.
func (c *TierController) ForceEscalate() {
	c.forceEscalate.Store(true)
}

// ForceEscalatePending reports whether the flag is asserted but not yet
// consumed.
func (c *TierController) ForceEscalatePending() bool {
	return c.forceEscalate.Load()
}

// Escalations returns the number of score-triggered Cloud escalations.
func (c *TierController) Escalations() int {
	return c.escalations
}

// Decide returns the tier for the current unit and records transition
// events. In baseline mode the tier is frozen at Edge and no rule is
// evaluated. First matching rule wins.
func (c *TierController) Decide(current Tier, score float64, index int, events *trace.EventLog) Tier {
	if c.mode == ModeBaseline {
		return current
	}

	if current != TierCloud && c.forceEscalate.CompareAndSwap(true, false) {
		events.Append(trace.EventMigration, "manual override: escalating to cloud", index)
		logrus.Infof("[unit %03d] manual override -> %s", index, TierCloud)
		return TierCloud
	}

	switch {
	case score >= c.scoreThreshold && current != TierCloud:
		c.escalations++
		events.Append(trace.EventMigration,
			fmt.Sprintf("instability %.2f exceeded threshold %.2f: escalating to cloud", score, c.scoreThreshold), index)
		logrus.Infof("[unit %03d] score %.3f -> %s", index, score, TierCloud)
		return TierCloud

	case score >= c.detThreshold && score < c.scoreThreshold && current == TierEdge:
		events.Append(trace.EventInfo, "uncertainty plateau: shifting to control", index)
		logrus.Infof("[unit %03d] score %.3f -> %s", index, score, TierControl)
		return TierControl

	case current == TierControl && score < c.detThreshold:
		events.Append(trace.EventInfo, "stability restored: returning to edge", index)
		logrus.Infof("[unit %03d] score %.3f -> %s", index, score, TierEdge)
		return TierEdge

	default:
		return current
	}
}

// applyDamping reflects the chosen tier's corrective effect on the
// step's values. The damped values are what get stored in the record
// and fed back into the run state.
func applyDamping(tier Tier, score, dispersion, drift float64) (float64, float64, float64) {
	switch tier {
	case TierCloud:
		return score * 0.4, dispersion * 0.5, drift * 0.3
	case TierControl:
		return score * 0.7, dispersion * 0.8, drift
	default:
		return score, dispersion, drift
	}
}
