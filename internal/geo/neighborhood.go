// Package geo provides the polygon geometry, centroid, great-circle distance
// and distance-zone operations behind the spatial comparison engine.
//
// Only single-ring polygons are supported: the first (outer) ring carries the
// shape and holes or multi-part features are rejected as malformed.
package geo

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/cts-trends/internal/crime"
)

// ErrMalformedGeometry marks a polygon that cannot take part in analysis.
var ErrMalformedGeometry = errors.New("geo: malformed geometry")

// Neighborhood is one polygon feature with its crime counts attached.
type Neighborhood struct {
	name     string
	polygon  *geom.Polygon
	centroid geom.Coord
	record   *crime.Record
}

// NewNeighborhood validates an outer ring of [lon, lat] vertices and builds a
// neighbourhood. The ring may or may not repeat its first vertex.
func NewNeighborhood(name string, ring []geom.Coord, rec *crime.Record) (*Neighborhood, error) {
	if distinctVertices(ring) < 3 {
		return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q ring has fewer than 3 distinct vertices", name)
	}
	for _, c := range ring {
		if len(c) < 2 {
			return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q has a vertex without lon/lat", name)
		}
	}

	closed := closeRing(ring)
	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{closed})
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q: %v", name, err)
	}

	return &Neighborhood{
		name:     name,
		polygon:  poly,
		centroid: Centroid(poly),
		record:   rec,
	}, nil
}

// FromGeometry builds a neighbourhood from a decoded geometry. Polygons must
// have exactly one ring; multipolygons must hold exactly one such polygon.
func FromGeometry(name string, g geom.T, rec *crime.Record) (*Neighborhood, error) {
	switch v := g.(type) {
	case *geom.Polygon:
		return fromPolygon(name, v, rec)
	case *geom.MultiPolygon:
		if v.NumPolygons() != 1 {
			return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q is a multipolygon with %d parts", name, v.NumPolygons())
		}
		return fromPolygon(name, v.Polygon(0), rec)
	case nil:
		return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q has no geometry", name)
	default:
		return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q has unsupported geometry %T", name, g)
	}
}

func fromPolygon(name string, p *geom.Polygon, rec *crime.Record) (*Neighborhood, error) {
	if p.NumLinearRings() != 1 {
		return nil, eris.Wrapf(ErrMalformedGeometry, "geo: %q polygon has %d rings", name, p.NumLinearRings())
	}
	return NewNeighborhood(name, p.LinearRing(0).Coords(), rec)
}

// Name returns the neighbourhood name from the geometry dataset.
func (n *Neighborhood) Name() string { return n.name }

// Polygon returns the closed single-ring polygon.
func (n *Neighborhood) Polygon() *geom.Polygon { return n.polygon }

// Centroid returns the polygon's area centroid as [lon, lat].
func (n *Neighborhood) Centroid() geom.Coord { return n.centroid }

// Record returns the crime counts attached to the feature.
func (n *Neighborhood) Record() *crime.Record { return n.record }

// WithRecord returns a copy carrying different crime counts.
func (n *Neighborhood) WithRecord(rec *crime.Record) *Neighborhood {
	cp := *n
	cp.record = rec
	return &cp
}

func distinctVertices(ring []geom.Coord) int {
	seen := make(map[[2]float64]struct{}, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		seen[[2]float64{c[0], c[1]}] = struct{}{}
	}
	return len(seen)
}

func closeRing(ring []geom.Coord) []geom.Coord {
	out := make([]geom.Coord, 0, len(ring)+1)
	for _, c := range ring {
		out = append(out, geom.Coord{c[0], c[1]})
	}
	first, last := out[0], out[len(out)-1]
	if first[0] != last[0] || first[1] != last[1] {
		out = append(out, geom.Coord{first[0], first[1]})
	}
	return out
}
