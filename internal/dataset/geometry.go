package dataset

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Feature is one geometry-dataset entry before it is joined to the
// attribute table.
type Feature struct {
	Name       string
	Geometry   geom.T
	Properties map[string]any
}

// shapefileNameFields adds the 10-character DBF truncation shapefile
// writers produce for NEIGHBOURHOOD_NAME.
var shapefileNameFields = []string{"NEIGHBOURHOOD_NAME", "NEIGHBOURH", "AREA_NAME"}

// DecodeGeometry reads features from path in the given format.
func DecodeGeometry(path string, format Format) ([]Feature, error) {
	switch format {
	case FormatGeoJSON, FormatJSON:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open geometry")
		}
		defer f.Close() //nolint:errcheck
		return DecodeGeoJSON(f)
	case FormatShapefile:
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("dataset: unsupported geometry format for %s", path)
	}
}

// DecodeGeoJSON reads a FeatureCollection. Features without a name are
// skipped.
func DecodeGeoJSON(r io.Reader) ([]Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "dataset: decode geojson")
	}

	out := make([]Feature, 0, len(fc.Features))
	var skipped int
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		name := nameOf(f.Properties)
		if name == "" {
			skipped++
			continue
		}
		out = append(out, Feature{Name: name, Geometry: f.Geometry, Properties: f.Properties})
	}
	if skipped > 0 {
		zap.L().Warn("dataset: skipped geojson features without a name", zap.Int("skipped", skipped))
	}
	return out, nil
}

// LoadShapefile reads polygon features from an ESRI shapefile. Every DBF
// column is copied into Properties.
func LoadShapefile(path string) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	nameIdx := -1
	for _, want := range shapefileNameFields {
		if nameIdx = fieldIndex(names, want); nameIdx >= 0 {
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("dataset: shapefile %s has no name field (want one of %v)", path, shapefileNameFields)
	}

	var out []Feature
	for reader.Next() {
		n, shape := reader.Shape()
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if name == "" {
			zap.L().Debug("dataset: skipping unnamed shape", zap.Int("index", n))
			continue
		}

		props := make(map[string]any, len(names))
		for i, col := range names {
			props[col] = strings.TrimSpace(reader.Attribute(i))
		}
		out = append(out, Feature{Name: name, Geometry: shapeToGeometry(shape), Properties: props})
	}
	return out, nil
}

// fieldIndex returns the index of a named field, or -1 if not found.
func fieldIndex(names []string, name string) int {
	for i, f := range names {
		if strings.EqualFold(f, name) {
			return i
		}
	}
	return -1
}

// shapeToGeometry converts a shapefile polygon into a MultiPolygon with one
// part per ring. Other shape types yield nil.
func shapeToGeometry(s shp.Shape) geom.T {
	p, ok := s.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("dataset: skipping malformed shapefile ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("dataset: skipping malformed shapefile part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
