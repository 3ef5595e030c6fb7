package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/geo"
)

// assaultSeries builds a record whose ASSAULT counts start at 2014.
func assaultSeries(name string, counts ...int) *crime.Record {
	m := make(map[string]int, len(counts))
	for i, n := range counts {
		m[crime.Key(crime.Assault, crime.FirstYear+i)] = n
	}
	return crime.NewRecord(name, m)
}

// hoodAt builds a small square neighbourhood centred on (lon, lat).
func hoodAt(t *testing.T, name string, lon, lat float64, rec *crime.Record) *geo.Neighborhood {
	t.Helper()
	const half = 0.0005
	ring := []geom.Coord{
		{lon - half, lat - half},
		{lon - half, lat + half},
		{lon + half, lat + half},
		{lon + half, lat - half},
	}
	n, err := geo.NewNeighborhood(name, ring, rec)
	require.NoError(t, err)
	return n
}
