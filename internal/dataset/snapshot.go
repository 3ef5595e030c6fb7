package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/geo"
	"github.com/sells-group/cts-trends/internal/sites"
)

// ErrNoRecords is returned when the attribute dataset holds no named records.
var ErrNoRecords = errors.New("dataset: no attribute records")

// versionNamespace scopes snapshot version UUIDs.
var versionNamespace = uuid.MustParse("6f1c9a52-3d0e-4b7a-9c55-0b8e2f4d71a3")

// Snapshot is an immutable, joined view of both input datasets.
type Snapshot struct {
	Records       []*crime.Record
	Neighborhoods []*geo.Neighborhood
	// Version identifies the snapshot's content; equal inputs give equal
	// versions.
	Version uuid.UUID
}

// Engine binds the snapshot to a classifier. A nil classifier uses the
// static site tables.
func (s *Snapshot) Engine(c *sites.Classifier) *analysis.Engine {
	return analysis.NewEngine(s.Records, s.Neighborhoods, c)
}

// Options configures Load.
type Options struct {
	// Attributes is the attribute table location: a path, file://, http(s)://
	// or ftp:// URL to a JSON, GeoJSON, CSV, XLSX or ZIP file.
	Attributes string
	// Geometry is the polygon dataset location (GeoJSON, shapefile, or a ZIP
	// holding either). Empty skips geometry.
	Geometry string
	TempDir  string
	HTTP     HTTPOptions
	FTP      FTPOptions
}

// Load fetches and decodes both datasets concurrently and joins them.
func Load(ctx context.Context, opts Options) (*Snapshot, error) {
	opener := &Opener{
		HTTP:    NewHTTPSource(opts.HTTP),
		FTP:     NewFTPSource(opts.FTP),
		TempDir: opts.TempDir,
	}
	return LoadWith(ctx, opener, opts.Attributes, opts.Geometry)
}

// LoadWith is Load with an explicit opener.
func LoadWith(ctx context.Context, opener *Opener, attributes, geometry string) (*Snapshot, error) {
	start := time.Now()

	var (
		records  []*crime.Record
		features []Feature
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = loadAttributes(gctx, opener, attributes)
		return err
	})
	if geometry != "" {
		g.Go(func() error {
			var err error
			features, err = loadGeometry(gctx, opener, geometry)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap, err := NewSnapshot(records, features)
	if err != nil {
		return nil, err
	}
	zap.L().Info("dataset: snapshot loaded",
		zap.Int("records", len(snap.Records)),
		zap.Int("neighborhoods", len(snap.Neighborhoods)),
		zap.String("version", snap.Version.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

func loadAttributes(ctx context.Context, opener *Opener, location string) ([]*crime.Record, error) {
	path, err := opener.Localize(ctx, location)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: attributes")
	}
	format := DetectFormat(path)
	if format == FormatZIP {
		if path, err = unzipFor(path, FormatJSON, FormatCSV, FormatXLSX, FormatGeoJSON); err != nil {
			return nil, eris.Wrap(err, "dataset: attributes")
		}
		format = DetectFormat(path)
	}
	return DecodeAttributes(ctx, path, format)
}

func loadGeometry(ctx context.Context, opener *Opener, location string) ([]Feature, error) {
	path, err := opener.Localize(ctx, location)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: geometry")
	}
	format := DetectFormat(path)
	if format == FormatZIP {
		if path, err = unzipFor(path, FormatShapefile, FormatGeoJSON, FormatJSON); err != nil {
			return nil, eris.Wrap(err, "dataset: geometry")
		}
		format = DetectFormat(path)
	}
	return DecodeGeometry(path, format)
}

// NewSnapshot joins attribute records with geometry features by normalized
// name. A feature is kept only when it matches an attribute record; it carries
// its own crime counts when its properties have any, otherwise the matching
// attribute record's. Malformed geometry fails the whole snapshot.
func NewSnapshot(records []*crime.Record, features []Feature) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	byName := make(map[string]*crime.Record, len(records))
	for _, r := range records {
		key := sites.Normalize(r.Name())
		if key == "" {
			return nil, eris.Errorf("dataset: record name %q normalizes to nothing", r.Name())
		}
		if prev, dup := byName[key]; dup {
			return nil, eris.Errorf("dataset: duplicate neighbourhood %q and %q", prev.Name(), r.Name())
		}
		byName[key] = r
	}

	log := zap.L().With(zap.String("component", "dataset.join"))
	matched := make(map[string]bool, len(features))
	hoods := make([]*geo.Neighborhood, 0, len(features))
	for _, f := range features {
		key := sites.Normalize(f.Name)
		attr, ok := byName[key]
		if !ok {
			log.Warn("geometry feature has no attribute record", zap.String("name", f.Name))
			continue
		}
		if matched[key] {
			log.Warn("duplicate geometry feature ignored", zap.String("name", f.Name))
			continue
		}
		matched[key] = true

		rec := attr
		if own, err := crime.ParseRecord(attr.Name(), f.Properties); err == nil && own.HasCounts() {
			rec = own
		}

		n, err := geo.FromGeometry(attr.Name(), f.Geometry, rec)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: join")
		}
		hoods = append(hoods, n)
	}

	if len(features) > 0 {
		for key, r := range byName {
			if !matched[key] {
				log.Info("attribute record has no geometry", zap.String("name", r.Name()))
			}
		}
	}

	return &Snapshot{
		Records:       records,
		Neighborhoods: hoods,
		Version:       version(records, hoods),
	}, nil
}

// version derives a name-based UUID from the snapshot content, independent
// of input order.
func version(records []*crime.Record, hoods []*geo.Neighborhood) uuid.UUID {
	h := sha256.New()
	var buf [8]byte
	putInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(f*1e9)))
		h.Write(buf[:])
	}

	sorted := append([]*crime.Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	for _, r := range sorted {
		h.Write([]byte(r.Name()))
		h.Write([]byte{0})
		for _, t := range crime.AllTypes {
			for _, y := range crime.Years() {
				putInt(r.Count(t, y))
			}
		}
	}

	names := make([]string, len(hoods))
	centroids := make(map[string][2]float64, len(hoods))
	for i, n := range hoods {
		names[i] = n.Name()
		c := n.Centroid()
		centroids[n.Name()] = [2]float64{c[0], c[1]}
	}
	sort.Strings(names)
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		c := centroids[name]
		putFloat(c[0])
		putFloat(c[1])
	}

	return uuid.NewSHA1(versionNamespace, h.Sum(nil))
}
