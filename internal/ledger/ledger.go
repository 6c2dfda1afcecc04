package ledger

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"bindery/internal/logging"
	"bindery/internal/services"
)

// Record is one entry of the processed-content ledger.
type Record struct {
	ContentHash      string
	OriginalFilename string
	ProcessedAt      time.Time
	OriginalPath     string
}

// Stats summarizes the ledger contents. DuplicateNameEntries counts records
// beyond the first per hash: the same content independently discovered at
// multiple paths over time. Expected and benign, purely diagnostic.
type Stats struct {
	TotalRecords         int
	UniqueHashes         int
	DuplicateNameEntries int
}

// Ledger is the append-only content-hash ledger, the single source of truth
// for "has this content been seen before". The on-disk format is one line per
// record, contentHash:filename:unixTimestamp:originalPath, so a hash can be
// checked with grep. Lookups go through an in-memory hash set built at open.
//
// The ledger file is single-writer. Callers serialize crawl passes externally
// (see crawler.Lock).
type Ledger struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	file   *os.File
	hashes map[string]struct{}
	total  int
}

// Open loads the ledger at path, creating it (and its directory) if absent.
func Open(path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("component", "ledger"))

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "ledger", "create directory", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ledger", "open", path, err)
	}

	l := &Ledger{
		path:   path,
		logger: logger,
		file:   file,
		hashes: make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	malformed := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			malformed++
			continue
		}
		l.hashes[rec.ContentHash] = struct{}{}
		l.total++
	}
	if err := scanner.Err(); err != nil {
		_ = file.Close()
		return nil, services.Wrap(services.ErrConfiguration, "ledger", "scan", path, err)
	}
	if malformed > 0 {
		logger.Warn("skipped malformed ledger lines", logging.Int("lines", malformed))
	}

	logger.Debug("ledger loaded",
		logging.Int("records", l.total),
		logging.Int("unique_hashes", len(l.hashes)))
	return l, nil
}

// Close releases the underlying file handle.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// IsProcessed reports whether a record with this content hash exists.
// Comparison is exact-match on the full digest.
func (l *Ledger) IsProcessed(contentHash string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.hashes[contentHash]
	return ok
}

// Record appends one entry. The hash must be complete; callers must never
// record a file whose hash could not be computed.
func (l *Ledger) Record(contentHash, filename, originalPath string, processedAt time.Time) error {
	contentHash = strings.TrimSpace(contentHash)
	if contentHash == "" {
		return services.Wrap(services.ErrHashUnavailable, "ledger", "record", "empty content hash", nil)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return services.Wrap(services.ErrConfiguration, "ledger", "record", "ledger closed", nil)
	}

	line := formatLine(Record{
		ContentHash:      contentHash,
		OriginalFilename: filename,
		ProcessedAt:      processedAt,
		OriginalPath:     originalPath,
	})
	if _, err := l.file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}

	l.hashes[contentHash] = struct{}{}
	l.total++
	return nil
}

// Stats reports record counts over the loaded ledger.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{
		TotalRecords:         l.total,
		UniqueHashes:         len(l.hashes),
		DuplicateNameEntries: l.total - len(l.hashes),
	}
}

// Records re-reads the ledger file and returns every parseable record in
// append order. Used by reporting commands, not the hot path.
func (l *Ledger) Records() ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Path returns the backing file location.
func (l *Ledger) Path() string {
	return l.path
}

// formatLine renders hash:filename:unixTimestamp:originalPath. Colons in the
// filename are replaced so the line stays parseable; the path field is last
// and may contain anything.
func formatLine(rec Record) string {
	filename := strings.ReplaceAll(rec.OriginalFilename, ":", "_")
	return strings.Join([]string{
		rec.ContentHash,
		filename,
		strconv.FormatInt(rec.ProcessedAt.Unix(), 10),
		rec.OriginalPath,
	}, ":")
}

func parseLine(line string) (Record, error) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) != 4 {
		return Record{}, fmt.Errorf("malformed ledger line")
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("malformed timestamp: %w", err)
	}
	if parts[0] == "" {
		return Record{}, fmt.Errorf("empty hash")
	}
	return Record{
		ContentHash:      parts[0],
		OriginalFilename: parts[1],
		ProcessedAt:      time.Unix(ts, 0).UTC(),
		OriginalPath:     parts[3],
	}, nil
}
