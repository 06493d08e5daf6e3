package engine

import (
	"math"
	"math/rand"

	"github.com/tierflow/tierflow/engine/trace"
)

// Perturbation amplitudes for the latent signals. Each draw is uniform
// in [-amplitude/2, +amplitude/2].
const (
	dispersionAmplitude = 0.15
	curvatureAmplitude  = 0.08
	spectrumAmplitude   = 0.25
)

// Scripted perturbation window: an induced fault over units 31..49
// while the run is still on Edge, with a single warning at unit 35.
const (
	faultWindowStart    = 30 // exclusive
	faultWindowEnd      = 50 // exclusive
	faultWarningIndex   = 35
	faultDispersionBump = 0.3
	faultDriftBump      = 0.5
)

// SignalStep carries the signal values produced for one unit.
type SignalStep struct {
	Dispersion float64 // updated accumulator value
	Curvature  float64 // updated accumulator value
	Drift      float64 // |spectrum_now - priorSpectrum| (+ scripted bump)
	Spectrum   float64 // spectrum_now, replaces PriorSpectrum
}

// SignalGenerator evolves the latent signals one step per unit of work.
// It has no side effects beyond the scripted fault-window warning.
type SignalGenerator struct {
	rng *rand.Rand
}

// NewSignalGenerator creates a generator drawing perturbations from rng.
func NewSignalGenerator(rng *rand.Rand) *SignalGenerator {
	return &SignalGenerator{rng: rng}
}

// Advance evolves the signals for unit index, mutating the state's
// signal fields and returning the step values the scorer consumes.
func (g *SignalGenerator) Advance(st *RunState, index int, events *trace.EventLog) SignalStep {
	st.Dispersion += g.centered(dispersionAmplitude)
	st.Curvature += g.centered(curvatureAmplitude)

	spectrum := st.PriorSpectrum + g.centered(spectrumAmplitude)
	drift := math.Abs(spectrum - st.PriorSpectrum)

	// Induced fault for demonstration; fires only if the tier has not
	// already escalated away from Edge.
	if st.Tier == TierEdge && index > faultWindowStart && index < faultWindowEnd {
		st.Dispersion += faultDispersionBump
		drift += faultDriftBump
		if index == faultWarningIndex {
			events.Append(trace.EventWarning, "spectral drift detected, instability building", index)
		}
	}

	st.PriorSpectrum = spectrum

	return SignalStep{
		Dispersion: st.Dispersion,
		Curvature:  st.Curvature,
		Drift:      drift,
		Spectrum:   spectrum,
	}
}

// centered draws uniformly from [-amplitude/2, +amplitude/2].
func (g *SignalGenerator) centered(amplitude float64) float64 {
	return (g.rng.Float64() - 0.5) * amplitude
}
