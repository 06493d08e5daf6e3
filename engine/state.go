package engine

// RunState holds the mutable per-run quantities, owned exclusively by
// the Runner for the duration of one run and passed explicitly through
// each pipeline stage.
//
// Invariants: UnitCount strictly increases by 1 per processed unit;
// TotalCost and InfoGain never decrease; Tier changes only through the
// TierController's transition rules.
type RunState struct {
	Dispersion    float64
	Curvature     float64
	PriorSpectrum float64
	Tier          Tier
	UnitCount     int
	InfoGain      float64
	TotalCost     float64
}

// newRunState returns the initial state: all signals at zero, tier at
// Edge. Escalation pressure builds from accumulated perturbation.
func newRunState() RunState {
	return RunState{Tier: TierEdge}
}
