package release

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/relkit/relkit/internal/config"
)

// MarkerError reports a project file that does not yet encode the release
// version.
type MarkerError struct {
	File string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("version not updated in %s", e.File)
}

// marker pairs a file with the pattern its version entry must match.
type marker struct {
	file    string
	pattern *regexp.Regexp
}

// markersFor builds the per-file version patterns. The changelog header must
// also carry a YYYY-MM-DD date.
func markersFor(cfg config.MarkersConfig, v Version) []marker {
	ver := regexp.QuoteMeta(v.String())
	return []marker{
		{cfg.BuildManifest, regexp.MustCompile(`(?m)^\s*project\(.*VERSION\s+` + regexp.QuoteMeta(v.Core()))},
		{cfg.Changelog, regexp.MustCompile(`(?m)^## ` + ver + ` \(\d{4}-\d{2}-\d{2}\)$`)},
		{cfg.Metainfo, regexp.MustCompile(`<release version="` + ver + `"`)},
		{cfg.PackagingManifest, regexp.MustCompile(`(?m)^version:\s+"?` + ver + `"?$`)},
	}
}

// CheckMarkers verifies that every marker file under root encodes the
// version. The first missing marker fails with *MarkerError naming the file.
func CheckMarkers(root string, cfg config.MarkersConfig, v Version) error {
	for _, m := range markersFor(cfg, v) {
		path := filepath.Join(root, m.file)
		data, err := os.ReadFile(path)
		if err != nil {
			return &MarkerError{File: m.file}
		}
		if !m.pattern.Match(data) {
			return &MarkerError{File: m.file}
		}
	}
	return nil
}
