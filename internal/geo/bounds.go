package geo

import "github.com/twpayne/go-geom"

// BBox is a lon/lat bounding box.
type BBox struct {
	MinLng float64 `json:"min_lng" yaml:"min_lng"`
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MaxLng float64 `json:"max_lng" yaml:"max_lng"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
}

// Bounds returns the box enclosing every neighbourhood ring. The second
// result is false when hoods is empty.
func Bounds(hoods []*Neighborhood) (BBox, bool) {
	if len(hoods) == 0 {
		return BBox{}, false
	}
	b := geom.NewBounds(geom.XY)
	for _, n := range hoods {
		b.Extend(n.polygon)
	}
	return BBox{
		MinLng: b.Min(0),
		MinLat: b.Min(1),
		MaxLng: b.Max(0),
		MaxLat: b.Max(1),
	}, true
}
