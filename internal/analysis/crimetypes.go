package analysis

import "github.com/sells-group/cts-trends/internal/crime"

// CrimeTypeRow totals one crime type for each group in a single year.
type CrimeTypeRow struct {
	CrimeType string `json:"type" yaml:"type"`
	Treatment int    `json:"cts_areas" yaml:"cts_areas"`
	Control   int    `json:"control_areas" yaml:"control_areas"`
}

// CrimeTypeBreakdown totals every crime type for both groups in year.
func CrimeTypeBreakdown(g Groups, year int) []CrimeTypeRow {
	out := make([]CrimeTypeRow, 0, len(crime.AllTypes))
	for _, t := range crime.AllTypes {
		types := []crime.Type{t}
		out = append(out, CrimeTypeRow{
			CrimeType: t.String(),
			Treatment: crime.GroupTotal(g.Treatment, types, year),
			Control:   crime.GroupTotal(g.Control, types, year),
		})
	}
	return out
}
