package engine

import (
	"hash/fnv"
	"math/rand"
)

// === RunKey ===

// RunKey uniquely identifies a reproducible run.
// Two runs with the same RunKey and identical configuration MUST
// produce identical record sequences.
type RunKey int64

// NewRunKey creates a RunKey from a seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

// === Stream Constants ===

const (
	// StreamSignals is the RNG stream for latent signal evolution.
	// Uses the master seed directly so signal trajectories depend only
	// on the seed, not on how many latency draws happened.
	StreamSignals = "signals"

	// StreamLatency is the RNG stream for per-unit latency sampling.
	StreamLatency = "latency"

	// StreamSource is the RNG stream for scripted token generation.
	StreamSource = "source"
)

// === StreamRNG ===

// StreamRNG provides deterministic, isolated RNG instances per stream.
//
// Derivation formula:
//   - For StreamSignals: uses the master seed directly
//   - For all other streams: masterSeed XOR fnv1a64(streamName)
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type StreamRNG struct {
	key     RunKey
	streams map[string]*rand.Rand
}

// NewStreamRNG creates a StreamRNG from a RunKey.
func NewStreamRNG(key RunKey) *StreamRNG {
	return &StreamRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// Stream returns a deterministically-seeded RNG for the named stream.
// The same name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (s *StreamRNG) Stream(name string) *rand.Rand {
	if rng, ok := s.streams[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == StreamSignals {
		derivedSeed = int64(s.key)
	} else {
		derivedSeed = int64(s.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	s.streams[name] = rng
	return rng
}

// Key returns the RunKey used to create this StreamRNG.
func (s *StreamRNG) Key() RunKey {
	return s.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(str string) int64 {
	h := fnv.New64a()
	h.Write([]byte(str))
	return int64(h.Sum64())
}
