package engine

// Composite weights for the instability score.
const (
	driftWeight      = 0.5
	dispersionWeight = 0.3
	curvatureWeight  = 0.2
)

// InstabilityScore combines the step's signal values into the single
// scalar the TierController consumes. Pure and never negative.
func InstabilityScore(drift, dispersion, curvature float64) float64 {
	score := driftWeight*drift + dispersionWeight*dispersion - curvatureWeight*curvature
	return max(0, score)
}
