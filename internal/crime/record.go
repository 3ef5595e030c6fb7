package crime

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Record holds one neighbourhood's annual counts per crime type. Records are
// immutable once built; absent (type, year) cells read as zero.
type Record struct {
	name   string
	counts [numTypes][NumYears]int
	cells  int
}

// NewRecord builds a record from sparse "<TYPE>_<YEAR>" keys. Unknown keys
// are ignored.
func NewRecord(name string, counts map[string]int) *Record {
	r := &Record{name: name}
	for key, n := range counts {
		if t, year, ok := ParseKey(key); ok {
			r.set(t, year, n)
		}
	}
	return r
}

// ParseRecord builds a record from a loosely typed attribute bag as decoded
// from JSON, CSV or spreadsheet rows. Keys that are not crime counts are
// skipped; count values must be non-negative integers (empty cells read as 0).
func ParseRecord(name string, fields map[string]any) (*Record, error) {
	r := &Record{name: name}
	for key, raw := range fields {
		t, year, ok := ParseKey(key)
		if !ok {
			continue
		}
		n, err := toCount(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "crime: %s field %s", name, key)
		}
		r.set(t, year, n)
	}
	return r, nil
}

func (r *Record) set(t Type, year, n int) {
	r.counts[t][year-FirstYear] = n
	r.cells++
}

// Name returns the neighbourhood name as it appears in the source data.
func (r *Record) Name() string { return r.name }

// Count returns the count for a crime type and year, or 0 when the cell is
// absent or outside the dataset range.
func (r *Record) Count(t Type, year int) int {
	if r == nil || t < 0 || int(t) >= numTypes || !InRange(year) {
		return 0
	}
	return r.counts[t][year-FirstYear]
}

// HasCounts reports whether any crime-count cell was present in the source.
func (r *Record) HasCounts() bool { return r != nil && r.cells > 0 }

// WithName returns a copy of the record carrying a different display name.
func (r *Record) WithName(name string) *Record {
	cp := *r
	cp.name = name
	return &cp
}

func toCount(raw any) (int, error) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, eris.Wrapf(err, "invalid count %q", v.String())
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, eris.Wrapf(err, "invalid count %q", s)
		}
		f = parsed
	default:
		return 0, eris.Errorf("unsupported count type %T", raw)
	}
	if math.IsNaN(f) || f < 0 || f != math.Trunc(f) {
		return 0, eris.Errorf("count %v is not a non-negative integer", f)
	}
	return int(f), nil
}
