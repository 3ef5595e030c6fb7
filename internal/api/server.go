// Package api serves the analysis engines over HTTP as JSON.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/dataset"
	"github.com/sells-group/cts-trends/internal/sites"
)

// Defaults holds the engine parameters used when a request omits them.
type Defaults struct {
	BaselineYear    int
	CohortYear      int
	NearThresholdKM float64
}

// Options configures a Server.
type Options struct {
	// Classifier is used when a request carries no control= parameters.
	// Nil uses the static site tables.
	Classifier     *sites.Classifier
	AllowedOrigins []string
	Defaults       Defaults
}

// Server answers analysis queries against one immutable snapshot.
type Server struct {
	snap     *dataset.Snapshot
	engine   *analysis.Engine
	origins  []string
	defaults Defaults
	etag     string
}

// NewServer creates a server over snap.
func NewServer(snap *dataset.Snapshot, opts Options) *Server {
	d := opts.Defaults
	if d.BaselineYear == 0 {
		d.BaselineYear = analysis.DefaultBaselineYear
	}
	if d.CohortYear == 0 {
		d.CohortYear = analysis.DefaultCohortYear
	}
	if d.NearThresholdKM == 0 {
		d.NearThresholdKM = analysis.DefaultNearThresholdKM
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		snap:     snap,
		engine:   snap.Engine(opts.Classifier),
		origins:  origins,
		defaults: d,
		etag:     `"` + snap.Version.String() + `"`,
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.versioned)
		r.Get("/index", s.index)
		r.Get("/did", s.did)
		r.Get("/trend", s.trend)
		r.Get("/spatial/zones", s.zones)
		r.Get("/spatial/compare", s.compare)
		r.Get("/spatial/distances", s.distances)
		r.Get("/crime-types", s.crimeTypes)
		r.Get("/neighborhoods", s.neighborhoods)
		r.Get("/neighborhoods/{name}", s.neighborhood)
		r.Get("/controls", s.controls)
		r.Get("/bounds", s.bounds)
	})
	return r
}

// versioned tags every response with the snapshot version and answers
// matching conditional requests with 304. The version covers the data only,
// so requests that differ by control= share it; clients vary on the URL.
func (s *Server) versioned(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", s.etag)
		if r.Header.Get("If-None-Match") == s.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
