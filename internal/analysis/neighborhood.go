package analysis

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/sites"
)

// YearCounts is one year of a neighbourhood's violent-crime breakdown.
type YearCounts struct {
	Year   int            `json:"year" yaml:"year"`
	Counts map[string]int `json:"counts" yaml:"counts"`
	Total  int            `json:"total" yaml:"total"`
}

// Summary is the per-neighbourhood card: classification, yearly violent
// crime by type, and the latest year-over-year change.
type Summary struct {
	Name            string       `json:"name" yaml:"name"`
	IsTreatment     bool         `json:"is_cts" yaml:"is_cts"`
	IsControl       bool         `json:"is_control" yaml:"is_control"`
	OpeningYear     *int         `json:"opening_year,omitempty" yaml:"opening_year,omitempty"`
	Years           []YearCounts `json:"years" yaml:"years"`
	LatestTotal     int          `json:"latest_total" yaml:"latest_total"`
	YearOverYearPct Value        `json:"year_over_year_pct" yaml:"year_over_year_pct"`
}

// Summarize builds the neighbourhood card for r. The year-over-year change
// compares the last two dataset years and is undefined when the earlier
// total is zero.
func Summarize(r *crime.Record, c *sites.Classifier) Summary {
	s := Summary{
		Name:        r.Name(),
		IsTreatment: c.IsTreatmentSite(r.Name()),
		IsControl:   c.IsControlSite(r.Name()),
	}
	if y, ok := c.OpeningYear(r.Name()); ok {
		s.OpeningYear = &y
	}

	for _, year := range crime.Years() {
		yc := YearCounts{Year: year, Counts: make(map[string]int, len(crime.ViolentTypes))}
		for _, t := range crime.ViolentTypes {
			n := r.Count(t, year)
			yc.Counts[strings.ToLower(t.String())] = n
			yc.Total += n
		}
		s.Years = append(s.Years, yc)
	}

	latest := s.Years[len(s.Years)-1].Total
	previous := s.Years[len(s.Years)-2].Total
	s.LatestTotal = latest
	s.YearOverYearPct = Value(ratio(float64(latest-previous), float64(previous)) * 100)
	return s
}

// Filter restricts a neighbourhood search to a group.
type Filter string

// Search filters.
const (
	FilterAll       Filter = "all"
	FilterTreatment Filter = "cts"
	FilterControl   Filter = "control"
)

// ParseFilter validates a filter name; empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterTreatment, FilterControl:
		return f, nil
	default:
		return "", eris.Errorf("analysis: unknown filter %q (want all, cts or control)", s)
	}
}

// Search returns records whose name contains query (case-insensitive) and
// which pass filter, sorted by name.
func Search(records []*crime.Record, c *sites.Classifier, query string, filter Filter) []*crime.Record {
	q := strings.ToLower(query)
	var out []*crime.Record
	for _, r := range records {
		if !strings.Contains(strings.ToLower(r.Name()), q) {
			continue
		}
		switch filter {
		case FilterTreatment:
			if !c.IsTreatmentSite(r.Name()) {
				continue
			}
		case FilterControl:
			if !c.IsControlSite(r.Name()) {
				continue
			}
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ControlCandidates lists every non-treatment neighbourhood name that could
// join the control selection: default control sites first, then the rest,
// each part alphabetical.
func ControlCandidates(records []*crime.Record, c *sites.Classifier) []string {
	var names []string
	for _, r := range records {
		if !c.IsTreatmentSite(r.Name()) {
			names = append(names, r.Name())
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		di, dj := sites.IsDefaultControl(names[i]), sites.IsDefaultControl(names[j])
		if di != dj {
			return di
		}
		return names[i] < names[j]
	})
	return names
}
