package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/geo"
	"github.com/sells-group/cts-trends/internal/sites"
)

// spatialFixture places one treatment site at the origin and four other
// neighbourhoods due north of it at roughly 0.56, 1.67, 2.78 and 5.56 km.
func spatialFixture(t *testing.T) []*geo.Neighborhood {
	t.Helper()
	rec := func(name string, counts map[string]int) *crime.Record { return crime.NewRecord(name, counts) }
	return []*geo.Neighborhood{
		hoodAt(t, "Regent Park", 0, 0, rec("Regent Park", map[string]int{"ASSAULT_2023": 500})),
		hoodAt(t, "Alpha", 0, 0.005, rec("Alpha", map[string]int{"ASSAULT_2016": 5, "ASSAULT_2023": 10, "SHOOTING_2023": 3})),
		hoodAt(t, "Bravo", 0, 0.015, rec("Bravo", map[string]int{"ASSAULT_2016": 20, "ASSAULT_2023": 20})),
		hoodAt(t, "Charlie", 0, 0.025, rec("Charlie", map[string]int{"ASSAULT_2016": 8, "ASSAULT_2023": 4})),
		hoodAt(t, "Delta", 0, 0.05, rec("Delta", map[string]int{})),
	}
}

func TestNearestDistances(t *testing.T) {
	rows := NearestDistances(spatialFixture(t), sites.Default())
	require.Len(t, rows, 4, "treatment sites are excluded")

	wantNames := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	wantKM := []float64{0.556, 1.668, 2.780, 5.560}
	wantZones := []geo.Zone{0, 1, 2, 3}
	for i, r := range rows {
		assert.Equal(t, wantNames[i], r.Name)
		assert.InDelta(t, wantKM[i], float64(r.DistanceKM), 0.001, r.Name)
		assert.Equal(t, wantZones[i], r.Zone, r.Name)
		assert.Equal(t, "Regent Park", r.NearestSite)
	}
}

func TestNearestDistances_NoTreatmentGeometry(t *testing.T) {
	hoods := spatialFixture(t)[1:]
	rows := NearestDistances(hoods, sites.Default())
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.True(t, math.IsInf(float64(r.DistanceKM), 1))
		assert.Equal(t, geo.Zone(geo.NumZones-1), r.Zone)
		assert.Empty(t, r.NearestSite)
	}
	// Ties on distance fall back to name order.
	assert.Equal(t, "Alpha", rows[0].Name)

	b, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Alpha","distance_km":null,"zone":3}`, string(b))
}

func TestZoneAverages(t *testing.T) {
	stats := ZoneAverages(NearestDistances(spatialFixture(t), sites.Default()), 2023)
	require.Len(t, stats, geo.NumZones)

	want := []struct {
		avg   float64
		count int
		desc  string
	}{
		{13, 1, "0-1km from CTS"},
		{20, 1, "1-2km from CTS"},
		{4, 1, "2-3km from CTS"},
		{0, 1, ">3km from CTS"},
	}
	for i, w := range want {
		assert.Equal(t, geo.Zone(i), stats[i].Zone)
		assert.Equal(t, w.avg, stats[i].AvgCrimeRate, "zone %d", i)
		assert.Equal(t, w.count, stats[i].NeighborhoodCount, "zone %d", i)
		assert.Equal(t, w.desc, stats[i].Description)
	}
}

func TestZoneAverages_EmptyZonesAreZero(t *testing.T) {
	stats := ZoneAverages(NearestDistances(spatialFixture(t)[:2], sites.Default()), 2023)
	assert.Equal(t, 1, stats[0].NeighborhoodCount)
	for _, s := range stats[1:] {
		assert.Equal(t, 0, s.NeighborhoodCount)
		assert.Equal(t, 0.0, s.AvgCrimeRate)
		assert.False(t, math.IsNaN(s.AvgCrimeRate))
	}
}

func TestNearFarComparison(t *testing.T) {
	rows := NearFarComparison(NearestDistances(spatialFixture(t), sites.Default()), CompareOptions{})
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Assault", "Robbery", "Breakenter", "Shooting"},
		[]string{rows[0].CrimeType, rows[1].CrimeType, rows[2].CrimeType, rows[3].CrimeType})

	assert.Equal(t, ComparisonRow{
		CrimeType:         "Assault",
		NearCTS:           15,
		OtherAreas:        2,
		PercentDifference: 650,
		ChangeNearCTS:     20,
		ChangeOtherAreas:  -50,
	}, rows[0])

	assert.Equal(t, ComparisonRow{CrimeType: "Robbery"}, rows[1])

	// No shootings away from the site: the percent difference has no
	// denominator and reports 0.
	assert.Equal(t, ComparisonRow{CrimeType: "Shooting", NearCTS: 1.5}, rows[3])
}

func TestNearFarComparison_Threshold(t *testing.T) {
	distances := NearestDistances(spatialFixture(t), sites.Default())

	wide := NearFarComparison(distances, CompareOptions{NearThresholdKM: 10})
	assert.Equal(t, 8.5, wide[0].NearCTS)
	assert.Equal(t, 0.0, wide[0].OtherAreas)
	assert.Equal(t, 0.0, wide[0].PercentDifference)

	narrow := NearFarComparison(distances, CompareOptions{NearThresholdKM: 1})
	assert.Equal(t, 10.0, narrow[0].NearCTS)
	assert.Equal(t, 8.0, narrow[0].OtherAreas)
	assert.Equal(t, 25.0, narrow[0].PercentDifference)
	assert.Equal(t, 100.0, narrow[0].ChangeNearCTS)
}

func TestNearFarComparison_NegativeHalfRoundsUp(t *testing.T) {
	counts := map[string]int{"ASSAULT_2016": 8, "ASSAULT_2023": 7}
	hoods := []*geo.Neighborhood{
		hoodAt(t, "Regent Park", 0, 0, crime.NewRecord("Regent Park", nil)),
		hoodAt(t, "Alpha", 0, 0.005, crime.NewRecord("Alpha", counts)),
		hoodAt(t, "Delta", 0, 0.05, crime.NewRecord("Delta", counts)),
	}

	rows := NearFarComparison(NearestDistances(hoods, sites.Default()), CompareOptions{})
	require.Len(t, rows, 4)

	// 8 -> 7 is -12.5%, reported as -12.
	assert.Equal(t, -12.0, rows[0].ChangeNearCTS)
	assert.Equal(t, -12.0, rows[0].ChangeOtherAreas)
	assert.Equal(t, 0.0, rows[0].PercentDifference)
	assert.Equal(t, 7.0, rows[0].NearCTS)
}

func TestNearFarComparison_Empty(t *testing.T) {
	rows := NearFarComparison(nil, CompareOptions{})
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Zero(t, r.NearCTS)
		assert.Zero(t, r.OtherAreas)
		assert.Zero(t, r.PercentDifference)
	}
}
