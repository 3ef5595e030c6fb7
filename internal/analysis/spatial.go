package analysis

import (
	"math"
	"sort"

	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/geo"
	"github.com/sells-group/cts-trends/internal/sites"
)

// Spatial engine defaults.
const (
	DefaultNearThresholdKM = 2.0
	DefaultCompareYear     = 2023
	DefaultSinceYear       = 2016
)

// DistanceRow is a non-treatment neighbourhood's distance to its nearest
// treatment site. DistanceKM is +Inf (null in JSON) when no treatment site
// has geometry.
type DistanceRow struct {
	Name        string   `json:"name" yaml:"name"`
	DistanceKM  Value    `json:"distance_km" yaml:"distance_km"`
	NearestSite string   `json:"nearest_site,omitempty" yaml:"nearest_site,omitempty"`
	Zone        geo.Zone `json:"zone" yaml:"zone"`

	record *crime.Record
}

// NearestDistances computes, for every non-treatment neighbourhood, the
// great-circle distance between its centroid and the nearest treatment-site
// centroid. Rows are sorted by distance, then name.
func NearestDistances(hoods []*geo.Neighborhood, c *sites.Classifier) []DistanceRow {
	var cts, others []*geo.Neighborhood
	for _, n := range hoods {
		if c.IsTreatmentSite(n.Name()) {
			cts = append(cts, n)
		} else {
			others = append(others, n)
		}
	}

	rows := make([]DistanceRow, 0, len(others))
	for _, n := range others {
		best := math.Inf(1)
		nearest := ""
		for _, site := range cts {
			if d := geo.Distance(n.Centroid(), site.Centroid()); d < best {
				best = d
				nearest = site.Name()
			}
		}
		rows = append(rows, DistanceRow{
			Name:        n.Name(),
			DistanceKM:  Value(best),
			NearestSite: nearest,
			Zone:        geo.AssignZone(best),
			record:      n.Record(),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DistanceKM != rows[j].DistanceKM {
			return rows[i].DistanceKM < rows[j].DistanceKM
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// ZoneStat is the average violent-crime total of the neighbourhoods in one
// distance zone.
type ZoneStat struct {
	Zone              geo.Zone `json:"zone_id" yaml:"zone_id"`
	Description       string   `json:"description" yaml:"description"`
	AvgCrimeRate      float64  `json:"avg_crime_rate" yaml:"avg_crime_rate"`
	NeighborhoodCount int      `json:"neighborhood_count" yaml:"neighborhood_count"`
}

// ZoneAverages buckets rows by zone and averages their violent-crime totals
// for year. Empty zones report an average of 0.
func ZoneAverages(rows []DistanceRow, year int) []ZoneStat {
	stats := make([]ZoneStat, geo.NumZones)
	sums := make([]float64, geo.NumZones)
	for i := range stats {
		stats[i] = ZoneStat{Zone: geo.Zone(i), Description: geo.Zone(i).Description()}
	}

	for _, r := range rows {
		z := int(r.Zone)
		sums[z] += float64(crime.SumTypesForYear(r.record, crime.ViolentTypes, year))
		stats[z].NeighborhoodCount++
	}

	for i := range stats {
		if stats[i].NeighborhoodCount > 0 {
			stats[i].AvgCrimeRate = sums[i] / float64(stats[i].NeighborhoodCount)
		}
	}
	return stats
}

// CompareOptions parameterizes NearFarComparison.
type CompareOptions struct {
	NearThresholdKM float64
	Year            int
	SinceYear       int
}

func (o CompareOptions) withDefaults() CompareOptions {
	if o.NearThresholdKM == 0 {
		o.NearThresholdKM = DefaultNearThresholdKM
	}
	if o.Year == 0 {
		o.Year = DefaultCompareYear
	}
	if o.SinceYear == 0 {
		o.SinceYear = DefaultSinceYear
	}
	return o
}

// ComparisonRow compares neighbourhoods near a treatment site with all other
// non-treatment neighbourhoods for one crime type. Averages carry one
// decimal; percentages are whole numbers.
type ComparisonRow struct {
	CrimeType         string  `json:"crime_type" yaml:"crime_type"`
	NearCTS           float64 `json:"near_cts" yaml:"near_cts"`
	OtherAreas        float64 `json:"other_areas" yaml:"other_areas"`
	PercentDifference float64 `json:"percent_difference" yaml:"percent_difference"`
	ChangeNearCTS     float64 `json:"change_near_cts" yaml:"change_near_cts"`
	ChangeOtherAreas  float64 `json:"change_other_areas" yaml:"change_other_areas"`
}

// comparisonTypes is the column order of the near/far table.
var comparisonTypes = []crime.Type{crime.Assault, crime.Robbery, crime.BreakEnter, crime.Shooting}

// NearFarComparison splits rows at the near threshold (inclusive) and, for
// each violent crime type, compares the two partitions' averages in
// opts.Year and their percent change since opts.SinceYear. Zero
// denominators yield 0.
func NearFarComparison(rows []DistanceRow, opts CompareOptions) []ComparisonRow {
	opts = opts.withDefaults()

	out := make([]ComparisonRow, 0, len(comparisonTypes))
	for _, t := range comparisonTypes {
		var nearNow, nearThen, otherNow, otherThen float64
		var nearN, otherN int
		for _, r := range rows {
			now := float64(r.record.Count(t, opts.Year))
			then := float64(r.record.Count(t, opts.SinceYear))
			if float64(r.DistanceKM) <= opts.NearThresholdKM {
				nearNow += now
				nearThen += then
				nearN++
			} else {
				otherNow += now
				otherThen += then
				otherN++
			}
		}

		nearAvg, nearAvgThen := safeMean(nearNow, nearN), safeMean(nearThen, nearN)
		otherAvg, otherAvgThen := safeMean(otherNow, otherN), safeMean(otherThen, otherN)

		out = append(out, ComparisonRow{
			CrimeType:         t.Label(),
			NearCTS:           round1(nearAvg),
			OtherAreas:        round1(otherAvg),
			PercentDifference: roundWhole(percentChange(otherAvg, nearAvg)),
			ChangeNearCTS:     roundWhole(percentChange(nearAvgThen, nearAvg)),
			ChangeOtherAreas:  roundWhole(percentChange(otherAvgThen, otherAvg)),
		})
	}
	return out
}

func safeMean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
