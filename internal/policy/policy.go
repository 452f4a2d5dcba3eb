// Package policy normalizes workflow weight vectors. Author input is never
// trusted downstream: every path through Resolve yields three finite
// non-negative components summing to 1, falling back to goal defaults
// whenever the raw input cannot be normalized safely.
package policy

import (
	"math"
	"strings"

	"github.com/defai-digital/AutomatosX-sub001/internal/spec"
)

// Declared optimization goals. Unknown goals resolve to the balanced table.
const (
	GoalCost        = "cost"
	GoalLatency     = "latency"
	GoalReliability = "reliability"
	GoalBalanced    = "balanced"
)

// Weights is a resolved weight vector. Components are always finite,
// non-negative, and sum to 1 within 1e-9.
type Weights struct {
	Cost        float64 `json:"cost"`
	Latency     float64 `json:"latency"`
	Reliability float64 `json:"reliability"`
}

// Sum returns the component total. Useful for invariant checks.
func (w Weights) Sum() float64 {
	return w.Cost + w.Latency + w.Reliability
}

// defaults maps each declared goal to its weight table. The tables bias the
// named dimension to 0.6 and split the remainder evenly.
var defaults = map[string]Weights{
	GoalCost:        {Cost: 0.6, Latency: 0.2, Reliability: 0.2},
	GoalLatency:     {Cost: 0.2, Latency: 0.6, Reliability: 0.2},
	GoalReliability: {Cost: 0.2, Latency: 0.2, Reliability: 0.6},
	GoalBalanced:    {Cost: 1.0 / 3, Latency: 1.0 / 3, Reliability: 1.0 / 3},
}

// DefaultsFor returns the default weight table for a goal. The lookup is
// total: goals are matched case-insensitively and anything unrecognized,
// including the empty string, falls back to the balanced table.
func DefaultsFor(goal string) Weights {
	if w, ok := defaults[strings.ToLower(strings.TrimSpace(goal))]; ok {
		return w
	}
	return defaults[GoalBalanced]
}

// Resolve normalizes a parsed policy into a weight vector. The returned bool
// reports whether goal defaults were applied instead of the author's weights,
// so callers can log the degradation.
//
// Author weights are used only when every component is finite and
// non-negative and their sum is finite and strictly positive; each component
// is then divided by the sum. Any violation, including a missing policy
// block, falls back to DefaultsFor(goal) rather than letting a corrupt
// vector propagate.
func Resolve(p *spec.Policy) (Weights, bool) {
	if p == nil {
		return DefaultsFor(""), true
	}

	raw := []float64{p.Weights.Cost, p.Weights.Latency, p.Weights.Reliability}
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return DefaultsFor(p.Goal), true
		}
	}

	sum := raw[0] + raw[1] + raw[2]
	if math.IsNaN(sum) || math.IsInf(sum, 0) || sum <= 0 {
		return DefaultsFor(p.Goal), true
	}

	return Weights{
		Cost:        raw[0] / sum,
		Latency:     raw[1] / sum,
		Reliability: raw[2] / sum,
	}, false
}
