package dataset

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// unzipFor unpacks zipPath into a sibling "<name>_unzipped" directory and
// returns the unpacked file whose format ranks first in want, taking the
// lexically smallest name on ties. Every entry is unpacked so shapefile
// sidecars land next to their .shp. Macintosh resource forks are skipped.
func unzipFor(zipPath string, want ...Format) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrapf(err, "zip: open %s", zipPath)
	}
	defer r.Close() //nolint:errcheck

	destDir := strings.TrimSuffix(zipPath, filepath.Ext(zipPath)) + "_unzipped"
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create extract dir")
	}

	var (
		best     string
		bestRank = len(want)
	)
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.Contains(f.Name, "__MACOSX") {
			continue
		}
		dest, err := entryPath(destDir, f.Name)
		if err != nil {
			return "", err
		}
		if err := unpackEntry(f, dest); err != nil {
			return "", err
		}

		rank := slices.Index(want, DetectFormat(dest))
		if rank < 0 {
			continue
		}
		if rank < bestRank || (rank == bestRank && dest < best) {
			best, bestRank = dest, rank
		}
	}

	if best == "" {
		return "", eris.Errorf("zip: no %v file in %s", want, zipPath)
	}
	return best, nil
}

// entryPath joins name under destDir, rejecting names that escape it.
func entryPath(destDir, name string) (string, error) {
	dest := filepath.Join(destDir, name)
	if !strings.HasPrefix(filepath.Clean(dest), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", name)
	}
	return dest, nil
}

func unpackEntry(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "zip: open entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	w, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "zip: create file")
	}
	if _, err := io.Copy(w, rc); err != nil {
		_ = w.Close()
		return eris.Wrapf(err, "zip: write %s", dest)
	}
	return eris.Wrap(w.Close(), "zip: close file")
}
