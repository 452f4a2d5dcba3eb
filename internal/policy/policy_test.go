package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defai-digital/AutomatosX-sub001/internal/spec"
)

func TestResolve_NormalizesAuthorWeights(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		policy *spec.Policy
		want   Weights
	}{
		"already normalized": {
			policy: &spec.Policy{Goal: GoalLatency, Weights: spec.RawWeights{Cost: 0.2, Latency: 0.6, Reliability: 0.2}},
			want:   Weights{Cost: 0.2, Latency: 0.6, Reliability: 0.2},
		},
		"scaled input": {
			policy: &spec.Policy{Weights: spec.RawWeights{Cost: 2, Latency: 6, Reliability: 2}},
			want:   Weights{Cost: 0.2, Latency: 0.6, Reliability: 0.2},
		},
		"single component": {
			policy: &spec.Policy{Weights: spec.RawWeights{Reliability: 5}},
			want:   Weights{Cost: 0, Latency: 0, Reliability: 1},
		},
		"tiny but positive": {
			policy: &spec.Policy{Weights: spec.RawWeights{Cost: 1e-12, Latency: 1e-12, Reliability: 2e-12}},
			want:   Weights{Cost: 0.25, Latency: 0.25, Reliability: 0.5},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, defaulted := Resolve(tc.policy)
			assert.False(t, defaulted)
			assert.InDelta(t, tc.want.Cost, got.Cost, 1e-9)
			assert.InDelta(t, tc.want.Latency, got.Latency, 1e-9)
			assert.InDelta(t, tc.want.Reliability, got.Reliability, 1e-9)
		})
	}
}

func TestResolve_FallsBackToGoalDefaults(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		policy *spec.Policy
		goal   string
	}{
		"nil policy":       {policy: nil, goal: ""},
		"all-zero weights": {policy: &spec.Policy{Goal: GoalCost}, goal: GoalCost},
		"negative component": {
			policy: &spec.Policy{Goal: GoalLatency, Weights: spec.RawWeights{Cost: -1, Latency: 2, Reliability: 1}},
			goal:   GoalLatency,
		},
		"NaN component": {
			policy: &spec.Policy{Goal: GoalReliability, Weights: spec.RawWeights{Cost: math.NaN(), Latency: 1, Reliability: 1}},
			goal:   GoalReliability,
		},
		"infinite component": {
			policy: &spec.Policy{Goal: GoalCost, Weights: spec.RawWeights{Cost: math.Inf(1), Latency: 1, Reliability: 1}},
			goal:   GoalCost,
		},
		"overflowing sum": {
			policy: &spec.Policy{Goal: GoalBalanced, Weights: spec.RawWeights{Cost: math.MaxFloat64, Latency: math.MaxFloat64, Reliability: 1}},
			goal:   GoalBalanced,
		},
		"unknown goal with bad weights": {
			policy: &spec.Policy{Goal: "turbo", Weights: spec.RawWeights{Cost: -3}},
			goal:   "turbo",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, defaulted := Resolve(tc.policy)
			assert.True(t, defaulted)
			assert.Equal(t, DefaultsFor(tc.goal), got)
		})
	}
}

// TestResolve_WeightInvariant feeds adversarial inputs and checks that the
// result is always three finite non-negative components summing to 1.
func TestResolve_WeightInvariant(t *testing.T) {
	t.Parallel()

	policies := []*spec.Policy{
		nil,
		{},
		{Goal: "??", Weights: spec.RawWeights{Cost: math.NaN(), Latency: math.NaN(), Reliability: math.NaN()}},
		{Weights: spec.RawWeights{Cost: math.Inf(-1)}},
		{Weights: spec.RawWeights{Cost: -0.0001, Latency: 0.5, Reliability: 0.5}},
		{Weights: spec.RawWeights{Cost: math.MaxFloat64 / 2, Latency: math.MaxFloat64 / 2, Reliability: math.MaxFloat64}},
		{Goal: GoalCost, Weights: spec.RawWeights{Cost: 1e300, Latency: 1e300, Reliability: 1e300}},
		{Goal: GoalLatency, Weights: spec.RawWeights{Cost: 7, Latency: 11, Reliability: 13}},
		{Goal: GoalReliability, Weights: spec.RawWeights{Cost: 0, Latency: 0, Reliability: 1e-300}},
	}

	for _, p := range policies {
		got, _ := Resolve(p)

		for _, v := range []float64{got.Cost, got.Latency, got.Reliability} {
			require.False(t, math.IsNaN(v), "component must not be NaN: %+v", got)
			require.False(t, math.IsInf(v, 0), "component must not be infinite: %+v", got)
			require.GreaterOrEqual(t, v, 0.0, "component must be non-negative: %+v", got)
		}
		assert.InDelta(t, 1.0, got.Sum(), 1e-9, "weights must sum to 1: %+v", got)
	}
}

func TestDefaultsFor(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		goal string
		want Weights
	}{
		"cost":        {goal: GoalCost, want: Weights{Cost: 0.6, Latency: 0.2, Reliability: 0.2}},
		"latency":     {goal: GoalLatency, want: Weights{Cost: 0.2, Latency: 0.6, Reliability: 0.2}},
		"reliability": {goal: GoalReliability, want: Weights{Cost: 0.2, Latency: 0.2, Reliability: 0.6}},
		"balanced":    {goal: GoalBalanced, want: Weights{Cost: 1.0 / 3, Latency: 1.0 / 3, Reliability: 1.0 / 3}},
		"mixed case":  {goal: "Latency", want: Weights{Cost: 0.2, Latency: 0.6, Reliability: 0.2}},
		"padded":      {goal: "  cost  ", want: Weights{Cost: 0.6, Latency: 0.2, Reliability: 0.2}},
		"unknown":     {goal: "throughput", want: Weights{Cost: 1.0 / 3, Latency: 1.0 / 3, Reliability: 1.0 / 3}},
		"empty":       {goal: "", want: Weights{Cost: 1.0 / 3, Latency: 1.0 / 3, Reliability: 1.0 / 3}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := DefaultsFor(tc.goal)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, 1.0, got.Sum(), 1e-9)
		})
	}
}
