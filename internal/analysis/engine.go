package analysis

import (
	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/geo"
	"github.com/sells-group/cts-trends/internal/sites"
)

// Engine binds an immutable dataset snapshot to a site classifier and runs
// every analysis against it. Results are recomputed on each call.
type Engine struct {
	records    []*crime.Record
	hoods      []*geo.Neighborhood
	classifier *sites.Classifier
}

// NewEngine creates an engine. A nil classifier uses the static site tables.
func NewEngine(records []*crime.Record, hoods []*geo.Neighborhood, c *sites.Classifier) *Engine {
	if c == nil {
		c = sites.Default()
	}
	return &Engine{records: records, hoods: hoods, classifier: c}
}

// WithClassifier returns an engine over the same snapshot using c.
func (e *Engine) WithClassifier(c *sites.Classifier) *Engine {
	return NewEngine(e.records, e.hoods, c)
}

// Classifier returns the engine's site classifier.
func (e *Engine) Classifier() *sites.Classifier { return e.classifier }

// Records returns the attribute records.
func (e *Engine) Records() []*crime.Record { return e.records }

// Neighborhoods returns the geometry features.
func (e *Engine) Neighborhoods() []*geo.Neighborhood { return e.hoods }

// Groups partitions the attribute records by the engine's classifier.
func (e *Engine) Groups() Groups { return Partition(e.records, e.classifier) }

// Index runs BaselineIndex.
func (e *Engine) Index(baselineYear int) ([]IndexPoint, error) {
	return BaselineIndex(e.Groups(), baselineYear)
}

// DiD runs DifferenceInDifferences on the opts.CohortYear cohort.
func (e *Engine) DiD(opts DiDOptions) ([]DiDPoint, error) {
	opts = opts.withDefaults()
	return DifferenceInDifferences(PartitionCohort(e.records, e.classifier, opts.CohortYear), opts)
}

// Trend runs TrendResiduals.
func (e *Engine) Trend() []TrendPoint { return TrendResiduals(e.Groups()) }

// Distances runs NearestDistances over the geometry features.
func (e *Engine) Distances() []DistanceRow { return NearestDistances(e.hoods, e.classifier) }

// Zones runs ZoneAverages for year.
func (e *Engine) Zones(year int) []ZoneStat {
	if year == 0 {
		year = DefaultCompareYear
	}
	return ZoneAverages(e.Distances(), year)
}

// Compare runs NearFarComparison.
func (e *Engine) Compare(opts CompareOptions) []ComparisonRow {
	return NearFarComparison(e.Distances(), opts)
}

// CrimeTypes runs CrimeTypeBreakdown for year.
func (e *Engine) CrimeTypes(year int) []CrimeTypeRow {
	if year == 0 {
		year = DefaultCompareYear
	}
	return CrimeTypeBreakdown(e.Groups(), year)
}

// Neighborhood summarizes the record whose normalized name matches name.
func (e *Engine) Neighborhood(name string) (Summary, bool) {
	key := sites.Normalize(name)
	if key == "" {
		return Summary{}, false
	}
	for _, r := range e.records {
		if sites.Normalize(r.Name()) == key {
			return Summarize(r, e.classifier), true
		}
	}
	return Summary{}, false
}

// Search runs Search over the attribute records.
func (e *Engine) Search(query string, filter Filter) []*crime.Record {
	return Search(e.records, e.classifier, query, filter)
}

// ControlCandidates runs ControlCandidates over the attribute records.
func (e *Engine) ControlCandidates() []string {
	return ControlCandidates(e.records, e.classifier)
}

// Bounds returns the geometry bounding box.
func (e *Engine) Bounds() (geo.BBox, bool) { return geo.Bounds(e.hoods) }
