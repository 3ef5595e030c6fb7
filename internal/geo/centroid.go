package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Centroid returns the planar area centroid of a polygon's outer ring.
// Degenerate zero-area rings fall back to the centroid of the ring's edges.
func Centroid(p *geom.Polygon) geom.Coord {
	c := xy.PolygonsCentroid(p)
	return geom.Coord{c.X(), c.Y()}
}
