// Package crime models per-neighbourhood annual crime counts and the
// aggregation primitives the analysis engines are built on.
package crime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Type is one of the enumerated crime categories in the dataset.
type Type int

// Crime categories, in dataset column order.
const (
	Assault Type = iota
	AutoTheft
	BikeTheft
	BreakEnter
	Robbery
	Shooting
	TheftFromMV
	TheftOver

	numTypes = iota
)

// Year range covered by the dataset (inclusive).
const (
	FirstYear = 2014
	LastYear  = 2023
	NumYears  = LastYear - FirstYear + 1
)

// ErrUnknownCrimeType is returned when a string does not name a crime category.
var ErrUnknownCrimeType = errors.New("crime: unknown crime type")

var typeNames = [numTypes]string{
	"ASSAULT",
	"AUTOTHEFT",
	"BIKETHEFT",
	"BREAKENTER",
	"ROBBERY",
	"SHOOTING",
	"THEFTFROMMV",
	"THEFTOVER",
}

// AllTypes lists every crime category in column order.
var AllTypes = []Type{Assault, AutoTheft, BikeTheft, BreakEnter, Robbery, Shooting, TheftFromMV, TheftOver}

// ViolentTypes is the fixed violent-crime subset every trend engine sums over.
var ViolentTypes = []Type{Assault, BreakEnter, Robbery, Shooting}

// String returns the dataset column prefix, e.g. "ASSAULT".
func (t Type) String() string {
	if t < 0 || int(t) >= numTypes {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Label returns the display form used in comparison tables, e.g. "Assault".
func (t Type) Label() string {
	s := t.String()
	return s[:1] + strings.ToLower(s[1:])
}

// ParseType resolves a column prefix (case-insensitive) to a Type.
func ParseType(s string) (Type, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == up {
			return Type(i), nil
		}
	}
	return 0, eris.Wrapf(ErrUnknownCrimeType, "crime: parse %q", s)
}

// Years returns every dataset year in ascending order.
func Years() []int {
	years := make([]int, NumYears)
	for i := range years {
		years[i] = FirstYear + i
	}
	return years
}

// InRange reports whether year is covered by the dataset.
func InRange(year int) bool {
	return year >= FirstYear && year <= LastYear
}

// Key builds the sparse attribute key for a count, e.g. "ASSAULT_2016".
func Key(t Type, year int) string {
	return t.String() + "_" + strconv.Itoa(year)
}

// ParseKey splits an attribute key such as "ROBBERY_2019" into its crime type
// and year. Keys naming an unknown type or an out-of-range year report false.
func ParseKey(key string) (Type, int, bool) {
	idx := strings.LastIndexByte(key, '_')
	if idx <= 0 || idx == len(key)-1 {
		return 0, 0, false
	}
	t, err := ParseType(key[:idx])
	if err != nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(key[idx+1:])
	if err != nil || !InRange(year) {
		return 0, 0, false
	}
	return t, year, true
}
