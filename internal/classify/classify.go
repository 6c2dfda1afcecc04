package classify

import (
	"path/filepath"
	"strings"
)

// crawlExtensions is the allow-list of formats the crawler treats as book
// candidates. Broader than the ingest set: archives are accepted here because
// operators drop zipped books into the source tree.
var crawlExtensions = map[string]struct{}{
	".epub": {}, ".pdf": {}, ".mobi": {},
	".azw": {}, ".azw3": {}, ".azw4": {},
	".txt": {}, ".rtf": {}, ".doc": {}, ".docx": {}, ".odt": {},
	".html": {}, ".htm": {}, ".fb2": {},
	".djv": {}, ".djvu": {}, ".chm": {},
	".lit": {}, ".prc": {}, ".pdb": {},
	".cbz": {}, ".cbr": {}, ".cb7": {}, ".cbt": {},
	".zip": {}, ".rar": {},
}

// ingestExtensions is the narrower set the catalog tool actually ingests.
// Raw archives are excluded; reaching staging with one means the upstream
// classifier drifted.
var ingestExtensions = map[string]struct{}{
	".epub": {}, ".pdf": {}, ".mobi": {},
	".azw": {}, ".azw3": {}, ".azw4": {},
	".txt": {}, ".rtf": {}, ".doc": {}, ".docx": {}, ".odt": {},
	".html": {}, ".htm": {}, ".fb2": {},
	".djv": {}, ".djvu": {}, ".chm": {},
	".lit": {}, ".prc": {}, ".pdb": {},
	".cbz": {}, ".cbr": {}, ".cb7": {}, ".cbt": {},
}

// artifactNames are catalog-internal files that are never candidates.
var artifactNames = map[string]struct{}{
	"metadata.db":                   {},
	"metadata_db_prefs_backup":      {},
	"metadata_db_prefs_backup.json": {},
	"metadata_pre_restore.db":       {},
	"metadata.opf":                  {},
	"cover.jpg":                     {},
	"cover.jpeg":                    {},
	"cover.png":                     {},
	"driveinfo.calibre":             {},
	"metadata.calibre":              {},
}

// artifactDirs are catalog-internal subdirectories whose contents are skipped.
var artifactDirs = map[string]struct{}{
	".caltrash": {},
	".calnotes": {},
}

// partialSuffixes mark files still being written by downloaders.
var partialSuffixes = []string{".part", ".crdownload", ".tmp", ".download"}

// IsBookCandidate reports whether a file name carries a supported book,
// document, or archive extension. Case-insensitive.
func IsBookCandidate(name string) bool {
	_, ok := crawlExtensions[normalizeExt(name)]
	return ok
}

// IsIngestible reports whether the catalog tool accepts this file name.
func IsIngestible(name string) bool {
	_, ok := ingestExtensions[normalizeExt(name)]
	return ok
}

// IsCatalogArtifact reports whether a file name is catalog-internal bookkeeping
// (metadata files, cover images, sidecar metadata) or a partial download.
// Artifacts are never candidates regardless of extension.
func IsCatalogArtifact(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	if _, ok := artifactNames[base]; ok {
		return true
	}
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// IsArtifactDir reports whether a directory name belongs to catalog internals
// and should be pruned from the walk.
func IsArtifactDir(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	if _, ok := artifactDirs[base]; ok {
		return true
	}
	return strings.HasPrefix(base, ".")
}

func normalizeExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
