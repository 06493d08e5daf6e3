package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstabilityScore(t *testing.T) {
	tests := []struct {
		name       string
		drift      float64
		dispersion float64
		curvature  float64
		want       float64
	}{
		{"all zero", 0, 0, 0, 0},
		{"drift only", 1.0, 0, 0, 0.5},
		{"dispersion only", 0, 1.0, 0, 0.3},
		{"curvature subtracts", 1.0, 1.0, 1.0, 0.6},
		{"clamped at zero", 0, 0, 5.0, 0},
		{"negative dispersion clamped", 0, -2.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InstabilityScore(tt.drift, tt.dispersion, tt.curvature)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}
