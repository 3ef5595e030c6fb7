package dataset

import (
	"path/filepath"
	"strings"
)

// Format is an input file format, detected from the file extension.
type Format string

// Supported formats.
const (
	FormatUnknown   Format = ""
	FormatJSON      Format = "json"
	FormatGeoJSON   Format = "geojson"
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatShapefile Format = "shp"
	FormatZIP       Format = "zip"
)

// DetectFormat maps a path's extension to a Format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".geojson":
		return FormatGeoJSON
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".shp":
		return FormatShapefile
	case ".zip":
		return FormatZIP
	default:
		return FormatUnknown
	}
}
