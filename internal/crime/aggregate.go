package crime

import "math"

// SumTypesForYear sums a record's counts over the given crime types for one year.
func SumTypesForYear(r *Record, types []Type, year int) int {
	sum := 0
	for _, t := range types {
		sum += r.Count(t, year)
	}
	return sum
}

// GroupTotal sums SumTypesForYear across records.
func GroupTotal(records []*Record, types []Type, year int) int {
	total := 0
	for _, r := range records {
		total += SumTypesForYear(r, types, year)
	}
	return total
}

// GroupAverage is the arithmetic mean of SumTypesForYear across records.
// An empty group yields NaN; callers must check with math.IsNaN.
func GroupAverage(records []*Record, types []Type, year int) float64 {
	if len(records) == 0 {
		return math.NaN()
	}
	return float64(GroupTotal(records, types, year)) / float64(len(records))
}

// Series returns GroupTotal for every dataset year, oldest first.
func Series(records []*Record, types []Type) []int {
	out := make([]int, NumYears)
	for i, year := range Years() {
		out[i] = GroupTotal(records, types, year)
	}
	return out
}
