package engine

import (
	"context"
	"io"
	"math/rand"
	"strings"
)

// TokenSource produces a lazy, finite, non-restartable sequence of text
// chunks. Next returns io.EOF at natural end of stream; if the context
// is cancelled mid-pull it returns the context error so the run loop is
// never left blocked after a cancel request.
type TokenSource interface {
	Next(ctx context.Context) (string, error)
}

// SourceFactory builds a TokenSource for one run. The rng is the run's
// dedicated source stream, so scripted generation is reproducible per
// seed without touching signal evolution.
type SourceFactory func(prompt string, rng *rand.Rand) TokenSource

// syllables used by the scripted source to assemble word-like chunks.
var syllables = []string{
	"ta", "ri", "no", "ve", "lum", "ka", "se", "or", "mi", "den",
	"pa", "lo", "qui", "zen", "ar", "tu", "bel", "in", "os", "cha",
}

// ScriptedSource emits a fixed number of deterministic word-like chunks.
// It stands in for a real generation backend in demos and tests.
type ScriptedSource struct {
	remaining int
	rng       *rand.Rand
}

// NewScriptedSource creates a source that emits n chunks.
func NewScriptedSource(n int, rng *rand.Rand) *ScriptedSource {
	return &ScriptedSource{remaining: n, rng: rng}
}

// Next emits the next chunk or io.EOF when exhausted.
func (s *ScriptedSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.remaining <= 0 {
		return "", io.EOF
	}
	s.remaining--

	var b strings.Builder
	for i := 0; i < 2+s.rng.Intn(2); i++ {
		b.WriteString(syllables[s.rng.Intn(len(syllables))])
	}
	b.WriteString(" ")
	return b.String(), nil
}

// DefaultSourceFactory returns a factory producing a ScriptedSource of
// the given chunk count. The prompt seeds nothing beyond the run's own
// RNG stream; it is carried for parity with real generation backends.
func DefaultSourceFactory(chunks int) SourceFactory {
	return func(prompt string, rng *rand.Rand) TokenSource {
		return NewScriptedSource(chunks, rng)
	}
}

// SliceSource replays a fixed chunk slice. Used in tests and anywhere a
// pre-tokenized stream is available.
type SliceSource struct {
	chunks []string
	next   int
}

// NewSliceSource creates a source over the given chunks.
func NewSliceSource(chunks []string) *SliceSource {
	return &SliceSource{chunks: chunks}
}

// Next emits the next chunk or io.EOF when exhausted.
func (s *SliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

// splitSubUnits splits a raw chunk into fixed-size sub-units of `size`
// runes (the last sub-unit may be shorter). Empty chunks yield nothing.
func splitSubUnits(chunk string, size int) []string {
	runes := []rune(chunk)
	if len(runes) == 0 {
		return nil
	}
	out := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}
