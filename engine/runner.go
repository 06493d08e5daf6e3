package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tierflow/tierflow/engine/trace"
)

// Sentinel errors for rejected operations. Neither changes any state.
var (
	// ErrAlreadyRunning is returned when Start or Replay is called
	// while a run or replay is active. The second request is rejected,
	// not queued.
	ErrAlreadyRunning = errors.New("a run or replay is already active")

	// ErrNothingToReplay is returned by Replay when no records exist.
	ErrNothingToReplay = errors.New("no records to replay")
)

// Phase is the lifecycle state of the Runner.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseReplaying Phase = "replaying"
	PhaseCompleted Phase = "completed"
	PhaseCancelled Phase = "cancelled"
	PhaseFailed    Phase = "failed"
)

// Active reports whether a run or replay is in flight.
func (p Phase) Active() bool {
	return p == PhaseRunning || p == PhaseReplaying
}

// Runner paces the processing of one unit at a time through the signal
// generator, scorer, tier controller and accountant, publishing one
// immutable record per unit. Exactly one run or replay may be active at
// a time. Processing is strictly serial: each stage depends on the
// previous stage's output via RunState, so there is nothing to
// parallelize; the only suspension point is the tier-dependent sleep
// after each published record, which is where cancellation is observed.
type Runner struct {
	mu      sync.Mutex
	phase   Phase
	cfg     Config
	state   RunState
	trace   *trace.RunTrace
	ctrl    *TierController
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error

	newSource SourceFactory
	bcast     *broadcaster

	// pace is the single suspension point; injectable so tests run at
	// full speed. The default sleeps with a context-aware timer.
	pace func(context.Context, time.Duration) error
}

// NewRunner creates an idle Runner pulling chunks from sources built by
// the given factory.
func NewRunner(factory SourceFactory) *Runner {
	r := &Runner{
		phase:     PhaseIdle,
		trace:     trace.NewRunTrace(),
		newSource: factory,
		bcast:     newBroadcaster(),
		pace:      sleepCtx,
	}
	r.trace.Events.SetNotify(r.notifyEvent)
	return r
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// notifyEvent runs under the runner lock (event appends happen inside
// processUnit), so it must not take r.mu itself.
func (r *Runner) notifyEvent(ev trace.Event) {
	r.bcast.publish(Update{Event: &ev})
}

// Start begins a new run. It fails with ErrAlreadyRunning if a run or
// replay is active, resets all accumulators and the record/event
// sequences, records a start event, then pulls units from the token
// source until end-of-stream, failure, or cancellation.
func (r *Runner) Start(ctx context.Context, prompt string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.phase.Active() {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cfg = cfg
	r.state = newRunState()
	r.resetTraceLocked()
	r.ctrl = NewTierController(cfg)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.lastErr = nil
	r.phase = PhaseRunning
	done := r.done
	r.mu.Unlock()

	go r.run(runCtx, prompt, cfg, done)
	return nil
}

func (r *Runner) resetTraceLocked() {
	r.trace.Reset()
	r.trace.Events.SetNotify(r.notifyEvent)
}

// run is the per-run loop. One raw chunk is pulled at a time, split
// into sub-units, and each sub-unit is fully resolved before the next
// begins.
func (r *Runner) run(ctx context.Context, prompt string, cfg Config, done chan struct{}) {
	defer close(done)

	rng := NewStreamRNG(NewRunKey(cfg.Seed))
	gen := NewSignalGenerator(rng.Stream(StreamSignals))
	acct := NewAccountant(cfg.profiles(), rng.Stream(StreamLatency))
	src := r.newSource(prompt, rng.Stream(StreamSource))

	r.appendEvent(trace.EventInfo, fmt.Sprintf("run started (mode=%s)", cfg.Mode), 0)
	logrus.Infof("run started: mode=%s threshold=%.2f seed=%d", cfg.Mode, cfg.EffectiveThreshold(), cfg.Seed)

	subSize := cfg.subUnitRunes()
	for {
		chunk, err := src.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				r.appendEvent(trace.EventInfo, "generation complete", r.unitCount())
				r.finish(PhaseCompleted, nil)
			case ctx.Err() != nil:
				r.finish(PhaseCancelled, nil)
			default:
				r.appendEvent(trace.EventCritical, "token source failed: "+err.Error(), r.unitCount())
				r.finish(PhaseFailed, err)
			}
			return
		}

		for _, sub := range splitSubUnits(chunk, subSize) {
			// Cancellation is checked before each unit so no partial
			// record is ever produced for an in-flight unit.
			if ctx.Err() != nil {
				r.finish(PhaseCancelled, nil)
				return
			}

			rec := r.processUnit(gen, acct, sub)
			r.trace.AppendRecord(rec)
			r.bcast.publish(Update{Record: &rec, Phase: PhaseRunning})
			logrus.Debugf("[unit %03d] tier=%s score=%.3f eff=%.3f", rec.Index, rec.Tier, rec.InstabilityScore, rec.Efficiency)

			if err := r.pace(ctx, rec.Latency); err != nil {
				r.finish(PhaseCancelled, nil)
				return
			}
		}
	}
}

// processUnit drives one sub-unit through the full pipeline and builds
// its record. The damped values are what get stored and fed back.
func (r *Runner) processUnit(gen *SignalGenerator, acct *Accountant, payload string) trace.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := &r.state
	st.UnitCount++
	index := st.UnitCount

	step := gen.Advance(st, index, r.trace.Events)
	score := InstabilityScore(step.Drift, st.Dispersion, st.Curvature)

	st.Tier = r.ctrl.Decide(st.Tier, score, index, r.trace.Events)

	dampedScore, dampedDispersion, dampedDrift := applyDamping(st.Tier, score, st.Dispersion, step.Drift)
	st.Dispersion = dampedDispersion

	charge := acct.ChargeUnit(st, st.Tier, dampedDispersion)

	return trace.Record{
		Index:            index,
		UnitPayload:      payload,
		InstabilityScore: dampedScore,
		Dispersion:       dampedDispersion,
		Curvature:        st.Curvature,
		Drift:            dampedDrift,
		Tier:             string(st.Tier),
		Timestamp:        time.Now(),
		Efficiency:       charge.Efficiency,
		Cost:             charge.Cost,
		TotalCost:        st.TotalCost,
		InfoGain:         st.InfoGain,
		Latency:          charge.Latency,
	}
}

// Replay re-publishes a previously recorded sequence at a fixed cadence
// with no recomputation. It fails with ErrNothingToReplay if the record
// sequence is empty, or ErrAlreadyRunning if a run/replay is active.
func (r *Runner) Replay(ctx context.Context) error {
	r.mu.Lock()
	if r.phase.Active() {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	snapshot := r.trace.Records()
	if len(snapshot) == 0 {
		r.mu.Unlock()
		return ErrNothingToReplay
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.resetTraceLocked()
	r.cancel = cancel
	r.done = make(chan struct{})
	r.lastErr = nil
	r.phase = PhaseReplaying
	cadence := r.cfg.replayCadence()
	done := r.done
	r.mu.Unlock()

	go r.replay(runCtx, snapshot, cadence, done)
	return nil
}

func (r *Runner) replay(ctx context.Context, snapshot []trace.Record, cadence time.Duration, done chan struct{}) {
	defer close(done)

	r.appendEvent(trace.EventInfo, fmt.Sprintf("replaying %d records", len(snapshot)), 0)
	logrus.Infof("replay started: %d records at %s cadence", len(snapshot), cadence)

	for i := range snapshot {
		if ctx.Err() != nil {
			r.finish(PhaseCancelled, nil)
			return
		}
		rec := snapshot[i]
		r.trace.AppendRecord(rec)
		r.bcast.publish(Update{Record: &rec, Phase: PhaseReplaying})

		if err := r.pace(ctx, cadence); err != nil {
			r.finish(PhaseCancelled, nil)
			return
		}
	}

	r.appendEvent(trace.EventInfo, "replay complete", snapshot[len(snapshot)-1].Index)
	r.finish(PhaseCompleted, nil)
}

// Cancel signals cooperative cancellation. Idempotent; already-published
// records and events are retained.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ForceEscalate asserts the manual-override flag. Accepted only while a
// run is active and the tier is not already Cloud; the flag is consumed
// by the next unit's tier decision. Returns whether it was accepted.
func (r *Runner) ForceEscalate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseRunning || r.state.Tier == TierCloud {
		return false
	}
	r.ctrl.ForceEscalate()
	return true
}

func (r *Runner) finish(phase Phase, err error) {
	r.mu.Lock()
	r.phase = phase
	r.lastErr = err
	r.mu.Unlock()
	r.bcast.publish(Update{Phase: phase})
	logrus.Infof("run finished: %s", phase)
}

func (r *Runner) appendEvent(kind trace.EventKind, message string, unitIndex int) {
	r.mu.Lock()
	events := r.trace.Events
	r.mu.Unlock()
	events.Append(kind, message, unitIndex)
}

func (r *Runner) unitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.UnitCount
}

// === Read-only surface for the presentation layer ===

// Phase returns the current lifecycle phase.
func (r *Runner) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Err returns the terminal error of the last run, if any. Cancellation
// is a normal outcome and reports no error.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Done returns a channel closed when the active run or replay ends.
// If nothing was ever started, the returned channel is already closed.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return r.done
}

// Records returns a copy of the visible record sequence.
func (r *Runner) Records() []trace.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace.Records()
}

// Events returns a copy of the event log.
func (r *Runner) Events() []trace.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace.Events.Events()
}

// State returns a snapshot of the run state.
func (r *Runner) State() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns the live headline metrics: the last published score,
// the current tier, the running efficiency ratio, and accumulated cost.
func (r *Runner) Current() (score float64, tier Tier, efficiency float64, totalCost float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.trace.Records()
	if len(records) > 0 {
		score = records[len(records)-1].InstabilityScore
	}
	return score, r.state.Tier, Efficiency(r.state.InfoGain, r.state.TotalCost), r.state.TotalCost
}

// Escalations returns the score-triggered Cloud escalation count of the
// current or last run.
func (r *Runner) Escalations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctrl == nil {
		return 0
	}
	return r.ctrl.Escalations()
}

// Subscribe registers a live consumer of records, events and phase
// changes. Slow subscribers miss updates rather than blocking the run.
func (r *Runner) Subscribe(buffer int) (<-chan Update, func()) {
	return r.bcast.subscribe(buffer)
}

// Summary computes the run summary from the visible trace.
func (r *Runner) Summary() Summary {
	return Summarize(r.Records(), r.Events(), r.Escalations())
}
