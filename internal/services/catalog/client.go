package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"bindery/internal/services"
)

var commandContext = exec.CommandContext

// Entry is one catalog record, reduced to the fields the pipeline queries.
type Entry struct {
	ID      int64    `json:"id"`
	Formats []string `json:"formats"`
}

// Service defines the catalog operations the ingest loop needs. The catalog is
// an opaque external collaborator; the pipeline never reads its storage.
type Service interface {
	// List returns every catalog entry with its format file paths.
	List(ctx context.Context) ([]Entry, error)
	// Add ingests a file into the catalog. With allowDuplicates the catalog's
	// own name-based duplicate heuristics are bypassed; content dedup has
	// already been enforced upstream by the ledger.
	Add(ctx context.Context, filePath string, allowDuplicates bool) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds each catalog invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the calibredb command-line tool.
type CLI struct {
	binary     string
	libraryDir string
	timeout    time.Duration
}

// NewCLI constructs a CLI client for the given library.
func NewCLI(libraryDir string, opts ...Option) *CLI {
	cli := &CLI{binary: "calibredb", libraryDir: libraryDir, timeout: 5 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// List runs calibredb list and decodes the machine-readable output.
func (c *CLI) List(ctx context.Context) ([]Entry, error) {
	if c.libraryDir == "" {
		return nil, errors.New("library directory required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"list", "--with-library", c.libraryDir, "--fields", "formats", "--for-machine"}
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, services.Wrap(services.ErrCatalogAdd, "catalog", "list", commandFailureDetail(err), err)
	}

	var entries []Entry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog list output: %w", err)
	}
	return entries, nil
}

// Add runs calibredb add for a single file.
func (c *CLI) Add(ctx context.Context, filePath string, allowDuplicates bool) error {
	if filePath == "" {
		return errors.New("file path required")
	}
	if c.libraryDir == "" {
		return errors.New("library directory required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"add", filePath, "--with-library", c.libraryDir}
	if allowDuplicates {
		args = append(args, "--duplicates")
	}
	cmd := commandContext(ctx, c.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = commandFailureDetail(err)
		}
		return services.Wrap(services.ErrCatalogAdd, "catalog", "add", detail, err)
	}
	return nil
}

// HasFilename reports whether any entry carries a format whose base name
// matches filename. This is the catalog-level duplicate check: name-based by
// design, since content identity was already settled upstream.
func HasFilename(entries []Entry, filename string) bool {
	filename = strings.ToLower(filename)
	for _, entry := range entries {
		for _, format := range entry.Formats {
			if strings.ToLower(filepath.Base(format)) == filename {
				return true
			}
		}
	}
	return false
}

func commandFailureDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail := strings.TrimSpace(string(exitErr.Stderr)); detail != "" {
			return detail
		}
		return exitErr.String()
	}
	return err.Error()
}

var _ Service = (*CLI)(nil)
