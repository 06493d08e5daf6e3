// Package trace provides the per-unit record and event log for a run.
// This package has no dependencies on engine/ — it stores pure data types.
package trace

import "time"

// Record captures one fully processed work unit. Records are immutable
// once appended and are ordered by Index (1-based, consecutive).
type Record struct {
	Index            int
	UnitPayload      string
	InstabilityScore float64
	Dispersion       float64
	Curvature        float64
	Drift            float64
	Tier             string
	Timestamp        time.Time
	Efficiency       float64 // InfoGain / max(0.1, TotalCost) at this unit
	Cost             float64 // cost charged for this unit
	TotalCost        float64 // running accumulator after this unit
	InfoGain         float64 // running accumulator after this unit
	Latency          time.Duration
}
