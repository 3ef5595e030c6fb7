package analysis

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/cts-trends/internal/crime"
)

// DefaultBaselineYear is the year before the 2017 treatment rollout.
const DefaultBaselineYear = 2016

// IndexPoint is one year of a baseline-indexed series (baseline year = 100).
type IndexPoint struct {
	Year      int   `json:"year" yaml:"year"`
	Treatment Value `json:"cts_index" yaml:"cts_index"`
	Control   Value `json:"control_index" yaml:"control_index"`
}

// BaselineIndex indexes each group's violent-crime total to its total in
// baselineYear: index = 100 * total(year) / total(baseline), one decimal.
// A zero baseline total makes that group's series undefined (NaN).
func BaselineIndex(g Groups, baselineYear int) ([]IndexPoint, error) {
	if !crime.InRange(baselineYear) {
		return nil, eris.Errorf("analysis: baseline year %d outside %d-%d", baselineYear, crime.FirstYear, crime.LastYear)
	}

	ctsBase := float64(crime.GroupTotal(g.Treatment, crime.ViolentTypes, baselineYear))
	ctlBase := float64(crime.GroupTotal(g.Control, crime.ViolentTypes, baselineYear))

	out := make([]IndexPoint, 0, crime.NumYears)
	for _, year := range crime.Years() {
		cts := float64(crime.GroupTotal(g.Treatment, crime.ViolentTypes, year))
		ctl := float64(crime.GroupTotal(g.Control, crime.ViolentTypes, year))
		out = append(out, IndexPoint{
			Year:      year,
			Treatment: Value(round1(ratio(cts, ctsBase) * 100)),
			Control:   Value(round1(ratio(ctl, ctlBase) * 100)),
		})
	}
	return out, nil
}
