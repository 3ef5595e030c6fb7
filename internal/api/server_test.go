package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/dataset"
)

func square(lon, lat float64) *geom.Polygon {
	const half = 0.0005
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{lon - half, lat - half},
		{lon - half, lat + half},
		{lon + half, lat + half},
		{lon + half, lat - half},
		{lon - half, lat - half},
	}})
}

func testSnapshot(t *testing.T) *dataset.Snapshot {
	t.Helper()
	records := []*crime.Record{
		crime.NewRecord("Regent Park", map[string]int{"ASSAULT_2016": 40, "ASSAULT_2017": 44}),
		crime.NewRecord("North Toronto", map[string]int{"ASSAULT_2016": 10, "ASSAULT_2017": 9}),
		crime.NewRecord("Annex", map[string]int{"ASSAULT_2016": 5, "ASSAULT_2017": 10}),
	}
	features := []dataset.Feature{
		{Name: "Regent Park", Geometry: square(-79.36, 43.66)},
		{Name: "North Toronto", Geometry: square(-79.40, 43.71)},
		{Name: "Annex", Geometry: square(-79.36, 43.665)},
	}
	snap, err := dataset.NewSnapshot(records, features)
	require.NoError(t, err)
	return snap
}

func get(t *testing.T, h http.Handler, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func pointFor(points []map[string]any, year int) map[string]any {
	for _, p := range points {
		if p["year"] == float64(year) {
			return p
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	snap := testSnapshot(t)
	h := NewServer(snap, Options{}).Router()

	var body map[string]any
	rec := get(t, h, "/health", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, snap.Version.String(), body["version"])
	assert.EqualValues(t, 3, body["records"])
	assert.EqualValues(t, 3, body["neighborhoods"])
}

func TestIndex(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var points []map[string]any
	rec := get(t, h, "/api/v1/index", &points)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, points, crime.NumYears)
	assert.EqualValues(t, 110, pointFor(points, 2017)["cts_index"])
	assert.EqualValues(t, 90, pointFor(points, 2017)["control_index"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestIndex_DynamicControls(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var points []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/index?control=Annex", &points).Code)
	assert.EqualValues(t, 200, pointFor(points, 2017)["control_index"])

	points = nil
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/index?control=", &points).Code)
	assert.Nil(t, pointFor(points, 2017)["control_index"], "an empty selection has no controls")

	points = nil
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/index", &points).Code)
	assert.EqualValues(t, 90, pointFor(points, 2017)["control_index"], "requests do not leak selections")
}

func TestBadParameters(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	for _, target := range []string{
		"/api/v1/index?baseline_year=1999",
		"/api/v1/index?baseline_year=abc",
		"/api/v1/did?cohort_year=2030",
		"/api/v1/spatial/compare?near_km=-1",
		"/api/v1/spatial/compare?near_km=far",
		"/api/v1/spatial/zones?year=2000",
		"/api/v1/crime-types?year=x",
		"/api/v1/neighborhoods?filter=bogus",
	} {
		rec := get(t, h, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestDiD(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var points []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/did?cohort_year=2017", &points).Code)
	assert.Len(t, points, crime.NumYears)
}

func TestNeighborhood(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var summary map[string]any
	rec := get(t, h, "/api/v1/neighborhoods/regent%20park", &summary)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Regent Park", summary["name"])
	assert.Equal(t, true, summary["is_cts"])
	assert.EqualValues(t, 2017, summary["opening_year"])

	rec = get(t, h, "/api/v1/neighborhoods/Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Atlantis")
}

func TestNeighborhoods(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var rows []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/neighborhoods?filter=cts", &rows).Code)
	require.Len(t, rows, 1)
	assert.Equal(t, "Regent Park", rows[0]["name"])
	assert.Equal(t, "cts", rows[0]["group"])

	rows = nil
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/neighborhoods?q=NOR", &rows).Code)
	require.Len(t, rows, 1)
	assert.Equal(t, "North Toronto", rows[0]["name"])

	rows = nil
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/neighborhoods?filter=control&control=Annex", &rows).Code)
	require.Len(t, rows, 1)
	assert.Equal(t, "Annex", rows[0]["name"])
}

func TestSpatial(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var dist []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/spatial/distances", &dist).Code)
	require.Len(t, dist, 2)
	assert.Equal(t, "Annex", dist[0]["name"])
	assert.Equal(t, "Regent Park", dist[0]["nearest_site"])
	assert.EqualValues(t, 0, dist[0]["zone"])
	assert.Equal(t, "North Toronto", dist[1]["name"])

	var zones []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/spatial/zones", &zones).Code)
	assert.Len(t, zones, 4)

	var cmp []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/spatial/compare?near_km=1", &cmp).Code)
	assert.NotEmpty(t, cmp)
	assert.Equal(t, "Assault", cmp[0]["crime_type"])
}

func TestCrimeTypesAndControls(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var types []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/crime-types?year=2017", &types).Code)
	require.NotEmpty(t, types)

	var controls []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/controls", &controls).Code)
	require.Len(t, controls, 2)
	assert.Equal(t, "North Toronto", controls[0]["name"])
	assert.Equal(t, true, controls[0]["default"])
	assert.Equal(t, true, controls[0]["selected"])
	assert.Equal(t, "Annex", controls[1]["name"])
	assert.Equal(t, false, controls[1]["selected"])
}

func TestBounds(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{}).Router()

	var box map[string]float64
	require.Equal(t, http.StatusOK, get(t, h, "/api/v1/bounds", &box).Code)
	assert.InDelta(t, -79.4005, box["min_lng"], 1e-9)
	assert.InDelta(t, 43.7105, box["max_lat"], 1e-9)

	snap, err := dataset.NewSnapshot([]*crime.Record{crime.NewRecord("Annex", nil)}, nil)
	require.NoError(t, err)
	rec := get(t, NewServer(snap, Options{}).Router(), "/api/v1/bounds", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestETag(t *testing.T) {
	snap := testSnapshot(t)
	h := NewServer(snap, Options{}).Router()

	rec := get(t, h, "/api/v1/trend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Equal(t, `"`+snap.Version.String()+`"`, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trend", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := NewServer(testSnapshot(t), Options{AllowedOrigins: []string{"https://dashboard.example"}}).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trend", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://dashboard.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/trend", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
