// Package engine implements the tier-migration decision engine: an
// online controller that routes a stream of generated work units across
// execution tiers of increasing cost based on a composite instability
// score.
//
// # Reading Guide
//
// Start with these three files to understand the control loop:
//   - signals.go: latent signal evolution (dispersion, curvature, drift)
//   - tier.go: the hysteretic tier state machine and damping
//   - runner.go: the run loop, pacing, cancellation, and replay
//
// # Architecture
//
// The engine package holds the pipeline and orchestration; pure data
// types live in the sub-package:
//   - engine/trace/: per-unit Record, append-only Event log, RunTrace
//
// Each processed unit flows through SignalGenerator -> InstabilityScore
// -> TierController -> Accountant, strictly serially: RunState is
// mutated in place and every stage depends on the prior stage's output.
// The Runner then publishes one immutable Record and sleeps for the
// unit's tier-dependent latency, which is the only suspension point and
// the place cancellation is observed.
//
// Randomness is partitioned per concern (StreamRNG): signal evolution,
// latency sampling and scripted token generation each draw from an
// isolated seed-derived stream, so runs are reproducible per seed.
package engine
