// Package analysis turns raw yearly crime counts into comparable series and
// spatial summaries: baseline indexing, difference-in-differences, linear
// trend residuals, distance-zone averages and near/far comparisons.
//
// Every engine is a pure function over its inputs. Undefined results (empty
// groups, zero baselines) surface as NaN rather than a misleading number.
package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a metric that may be undefined. NaN and infinities encode as
// null in JSON and YAML.
type Value float64

// Defined reports whether v is a finite number.
func (v Value) Defined() bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	if !v.Defined() {
		return nil, nil
	}
	return float64(v), nil
}

// String formats v with one decimal, or "n/a" when undefined.
func (v Value) String() string {
	if !v.Defined() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(v), 'f', 1, 64)
}

func undefined() Value { return Value(math.NaN()) }

// round1 rounds to one decimal place, halves toward +Inf. NaN stays NaN.
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// roundWhole rounds to an integer, halves toward +Inf.
func roundWhole(x float64) float64 {
	return math.Floor(x + 0.5)
}

// ratio returns num/den, or NaN when den is zero.
func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// percentChange returns 100*(to-from)/from, or 0 when from is not positive.
func percentChange(from, to float64) float64 {
	if from > 0 {
		return (to - from) / from * 100
	}
	return 0
}
