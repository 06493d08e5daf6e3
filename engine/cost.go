package engine

import (
	"math/rand"
	"time"
)

// TierProfile holds the cost and latency parameters of one tier.
// Per-unit latency is LatencyBaseMs + U(0, LatencyJitterMs).
type TierProfile struct {
	Cost            float64
	LatencyBaseMs   float64
	LatencyJitterMs float64
}

// DefaultProfiles returns the built-in cost table. Edge and Control
// share the same latency parameters; only Cloud is slower. That
// asymmetry is intentional and must be preserved.
func DefaultProfiles() map[Tier]TierProfile {
	return map[Tier]TierProfile{
		TierEdge:    {Cost: 2.1, LatencyBaseMs: 40, LatencyJitterMs: 10},
		TierControl: {Cost: 4.2, LatencyBaseMs: 40, LatencyJitterMs: 10},
		TierCloud:   {Cost: 12.5, LatencyBaseMs: 85, LatencyJitterMs: 20},
	}
}

// minEfficiencyDivisor floors the cost denominator so the ratio is
// defined from the first unit.
const minEfficiencyDivisor = 0.1

// minInfoGainStep floors the per-unit information-gain proxy.
const minInfoGainStep = 0.1

// Charge is the result of accounting one unit.
type Charge struct {
	Cost       float64
	Latency    time.Duration
	Efficiency float64
}

// Accountant tracks cumulative energy-equivalent cost and an
// information-gain proxy across a run. Latency draws come from their
// own RNG stream so they never perturb signal evolution.
type Accountant struct {
	profiles map[Tier]TierProfile
	rng      *rand.Rand
}

// NewAccountant creates an accountant over the given tier profiles.
func NewAccountant(profiles map[Tier]TierProfile, rng *rand.Rand) *Accountant {
	return &Accountant{profiles: profiles, rng: rng}
}

// ChargeUnit accounts one processed unit: draws the tier-determined
// latency, accrues cost and information gain on the state, and returns
// the running efficiency ratio. The accumulators never decrease and are
// never reset mid-run.
func (a *Accountant) ChargeUnit(st *RunState, tier Tier, dampedDispersion float64) Charge {
	p := a.profiles[tier]

	latencyMs := p.LatencyBaseMs + a.rng.Float64()*p.LatencyJitterMs
	latency := time.Duration(latencyMs * float64(time.Millisecond))

	st.InfoGain += max(minInfoGainStep, 1-dampedDispersion)
	st.TotalCost += p.Cost

	return Charge{
		Cost:       p.Cost,
		Latency:    latency,
		Efficiency: Efficiency(st.InfoGain, st.TotalCost),
	}
}

// Efficiency computes the headline ratio from the running accumulators.
func Efficiency(infoGain, totalCost float64) float64 {
	return infoGain / max(minEfficiencyDivisor, totalCost)
}
