package analysis

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"

	"github.com/sells-group/cts-trends/internal/crime"
)

// DefaultCohortYear is the opening year of the treatment sites under study.
const DefaultCohortYear = 2017

// DefaultBaselineYears is the pre-treatment period averaged into the
// difference-in-differences baseline.
var DefaultBaselineYears = []int{2014, 2015, 2016}

// DiDOptions parameterizes DifferenceInDifferences.
type DiDOptions struct {
	// CohortYear is the treatment year. Only treatment sites opened in this
	// year should be in the treatment group (see PartitionCohort).
	CohortYear int
	// BaselineYears are averaged into each group's pre-treatment baseline.
	BaselineYears []int
}

func (o DiDOptions) withDefaults() DiDOptions {
	if o.CohortYear == 0 {
		o.CohortYear = DefaultCohortYear
	}
	if len(o.BaselineYears) == 0 {
		o.BaselineYears = DefaultBaselineYears
	}
	return o
}

// DiDPoint is one year of the difference-in-differences series. Treatment
// and Control are percent of baseline; Difference is their gap, and
// RelativeChange is the gap's movement since the cohort year.
type DiDPoint struct {
	Year           int   `json:"year" yaml:"year"`
	Treatment      Value `json:"cts_areas" yaml:"cts_areas"`
	Control        Value `json:"control_areas" yaml:"control_areas"`
	Difference     Value `json:"difference" yaml:"difference"`
	RelativeChange Value `json:"relative_change" yaml:"relative_change"`
}

// DifferenceInDifferences normalizes each group's yearly average violent
// crime to its mean over the baseline years, takes the treatment-minus-control
// gap, then measures every post-cohort year's gap against the cohort year's.
// Years before the cohort year have RelativeChange 0.
func DifferenceInDifferences(g Groups, opts DiDOptions) ([]DiDPoint, error) {
	opts = opts.withDefaults()
	if !crime.InRange(opts.CohortYear) {
		return nil, eris.Errorf("analysis: cohort year %d outside %d-%d", opts.CohortYear, crime.FirstYear, crime.LastYear)
	}
	for _, y := range opts.BaselineYears {
		if !crime.InRange(y) {
			return nil, eris.Errorf("analysis: baseline year %d outside %d-%d", y, crime.FirstYear, crime.LastYear)
		}
	}

	ctsBase := baselineMean(g.Treatment, opts.BaselineYears)
	ctlBase := baselineMean(g.Control, opts.BaselineYears)

	out := make([]DiDPoint, 0, crime.NumYears)
	var cohortDiff float64
	for _, year := range crime.Years() {
		cts := ratio(crime.GroupAverage(g.Treatment, crime.ViolentTypes, year), ctsBase) * 100
		ctl := ratio(crime.GroupAverage(g.Control, crime.ViolentTypes, year), ctlBase) * 100
		diff := round1(cts - ctl)
		if year == opts.CohortYear {
			cohortDiff = diff
		}
		out = append(out, DiDPoint{
			Year:       year,
			Treatment:  Value(round1(cts)),
			Control:    Value(round1(ctl)),
			Difference: Value(diff),
		})
	}

	for i := range out {
		if out[i].Year >= opts.CohortYear {
			out[i].RelativeChange = Value(round1(float64(out[i].Difference) - cohortDiff))
		}
	}
	return out, nil
}

// baselineMean averages GroupAverage over years. NaN for an empty group.
func baselineMean(records []*crime.Record, years []int) float64 {
	avgs := make([]float64, len(years))
	for i, y := range years {
		avgs[i] = crime.GroupAverage(records, crime.ViolentTypes, y)
	}
	return floats.Sum(avgs) / float64(len(years))
}
