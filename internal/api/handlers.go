package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/report"
	"github.com/sells-group/cts-trends/internal/sites"
)

// engineFor returns the server engine, or one over the same snapshot with
// the request's control= selection when any are given.
func (s *Server) engineFor(r *http.Request) *analysis.Engine {
	names, ok := r.URL.Query()["control"]
	if !ok {
		return s.engine
	}
	c := sites.NewClassifier(
		sites.WithTreatmentSites(s.engine.Classifier().TreatmentSites()),
		sites.WithControls(sites.NewSelection(names...)),
	)
	return s.engine.WithClassifier(c)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func yearParam(r *http.Request, name string, def int) (int, error) {
	year, err := intParam(r, name, def)
	if err != nil {
		return 0, err
	}
	if !crime.InRange(year) {
		return 0, eris.Errorf("%s %d outside %d-%d", name, year, crime.FirstYear, crime.LastYear)
	}
	return year, nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.snap.Version.String(),
		"records":       len(s.snap.Records),
		"neighborhoods": len(s.snap.Neighborhoods),
	})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "baseline_year", s.defaults.BaselineYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := s.engineFor(r).Index(year)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) did(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "cohort_year", s.defaults.CohortYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := s.engineFor(r).DiD(analysis.DiDOptions{CohortYear: year})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engineFor(r).Trend())
}

func (s *Server) zones(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "year", analysis.DefaultCompareYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engineFor(r).Zones(year))
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	km := s.defaults.NearThresholdKM
	if raw := r.URL.Query().Get("near_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid near_km %q", raw))
			return
		}
		km = v
	}
	writeJSON(w, http.StatusOK, s.engineFor(r).Compare(analysis.CompareOptions{NearThresholdKM: km}))
}

func (s *Server) distances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engineFor(r).Distances())
}

func (s *Server) crimeTypes(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r, "year", analysis.DefaultCompareYear)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engineFor(r).CrimeTypes(year))
}

func (s *Server) neighborhoods(w http.ResponseWriter, r *http.Request) {
	filter, err := analysis.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e := s.engineFor(r)
	writeJSON(w, http.StatusOK, report.NeighborhoodRows(e.Search(r.URL.Query().Get("q"), filter), e.Classifier()))
}

func (s *Server) neighborhood(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	summary, ok := s.engineFor(r).Neighborhood(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown neighborhood %q", name))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) controls(w http.ResponseWriter, r *http.Request) {
	e := s.engineFor(r)
	writeJSON(w, http.StatusOK, report.ControlRows(e.ControlCandidates(), e.Classifier()))
}

func (s *Server) bounds(w http.ResponseWriter, _ *http.Request) {
	box, ok := s.engine.Bounds()
	if !ok {
		writeError(w, http.StatusNotFound, "no neighborhood geometry loaded")
		return
	}
	writeJSON(w, http.StatusOK, box)
}
