// Package dataset loads the attribute table and neighbourhood geometry from
// local files or remote http(s)/ftp sources and joins them into an immutable
// Snapshot the analysis engines run against.
package dataset

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Opener resolves a data location to a local file, downloading remote
// sources into TempDir first.
type Opener struct {
	HTTP    Fetcher
	FTP     Fetcher
	TempDir string
}

// Localize returns a local path for location. Plain paths and file:// URLs
// are returned as is; http(s) and ftp URLs are downloaded.
func (o *Opener) Localize(ctx context.Context, location string) (string, error) {
	if location == "" {
		return "", eris.New("dataset: empty location")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// No scheme, or a Windows drive letter.
		return location, nil
	}

	var f Fetcher
	switch strings.ToLower(u.Scheme) {
	case "file":
		return u.Path, nil
	case "http", "https":
		f = o.HTTP
	case "ftp":
		f = o.FTP
	default:
		return "", eris.Errorf("dataset: unsupported scheme %q in %s", u.Scheme, location)
	}
	if f == nil {
		return "", eris.Errorf("dataset: no fetcher configured for %s", u.Scheme)
	}

	dir := o.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "dataset: create temp dir")
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}
	dest := filepath.Join(dir, name)

	zap.L().Info("dataset: downloading", zap.String("url", location), zap.String("dest", dest))
	n, err := f.DownloadToFile(ctx, location, dest)
	if err != nil {
		return "", eris.Wrapf(err, "dataset: fetch %s", location)
	}
	zap.L().Debug("dataset: downloaded", zap.String("url", location), zap.Int64("bytes", n))
	return dest, nil
}

// writeFile copies body into a new file at path.
func writeFile(body io.Reader, path string) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
