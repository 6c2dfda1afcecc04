// Package preflight validates the runtime environment before a crawl or
// ingest session starts.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"bindery/internal/config"
	"bindery/internal/services"
)

// Result is the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. Results are
// reported in a stable order; a failed check does not stop the rest.
func RunAll(cfg *config.Config) []Result {
	results := []Result{
		CheckDirectoryReadable("Source tree", cfg.Paths.SourceDir),
		CheckDirectoryAccess("Backup root", cfg.Paths.BackupDir),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Catalog library", cfg.Catalog.LibraryDir),
		CheckBinary("Catalog tool", cfg.CatalogBinary()),
	}
	if cfg.Crawl.MinFreeSpaceMiB > 0 {
		results = append(results,
			CheckFreeSpace("Backup volume", cfg.Paths.BackupDir, cfg.Crawl.MinFreeSpaceMiB),
			CheckFreeSpace("Staging volume", cfg.Paths.StagingDir, cfg.Crawl.MinFreeSpaceMiB),
		)
	}
	return results
}

// Verify runs all checks and converts any failure into a fatal setup error.
func Verify(cfg *config.Config) error {
	var failures []string
	for _, result := range RunAll(cfg) {
		if !result.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failures) > 0 {
		return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(failures, "; "), nil)
	}
	return nil
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s does not exist", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	if _, err := os.ReadDir(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckDirectoryAccess verifies that the directory exists and is writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s does not exist", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	probe := filepath.Join(path, ".bindery-preflight")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not writable: %v)", path, err)}
	}
	_ = os.Remove(probe)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinary verifies the external tool can be found on PATH.
func CheckBinary(name, binary string) Result {
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", binary)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckFreeSpace verifies the filesystem backing path has at least minMiB free.
func CheckFreeSpace(name, path string, minMiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (statfs: %v)", path, err)}
	}
	freeMiB := stat.Bavail * uint64(stat.Bsize) / (1024 * 1024)
	if freeMiB < uint64(minMiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%d MiB free, need %d MiB", freeMiB, minMiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d MiB free", freeMiB)}
}
