package transfer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"bindery/internal/logging"
	"bindery/internal/services"
)

// Transferer relocates originals into the backup area and hardlinks them into
// staging. After a successful Transfer the backup copy is the authoritative
// durable copy; the staged link is a consumable reference the ingest loop may
// delete without touching the backup.
type Transferer struct {
	sourceRoot string
	backupRoot string
	stagingDir string
	logger     *slog.Logger
}

// New constructs a Transferer over the three pipeline roots.
func New(sourceRoot, backupRoot, stagingDir string, logger *slog.Logger) *Transferer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transferer{
		sourceRoot: sourceRoot,
		backupRoot: backupRoot,
		stagingDir: stagingDir,
		logger:     logger.With(logging.String("component", "transfer")),
	}
}

// Transfer moves sourcePath into the structure-mirroring backup area and
// creates a hardlink from there into the flat staging directory. Returns the
// staged path.
//
// Failure modes: ErrBackupWrite leaves the file at its source, untouched and
// safe to retry. ErrLinkConflict means staging already holds a same-named
// file; the original has been backed up but nothing was recorded, so an
// operator must resolve the name collision.
func (t *Transferer) Transfer(sourcePath string) (string, error) {
	rel, err := filepath.Rel(t.sourceRoot, sourcePath)
	if err != nil || rel == "." || filepath.IsAbs(rel) || len(rel) >= 2 && rel[:2] == ".." {
		return "", services.Wrap(services.ErrBackupWrite, "transfer", "relativize",
			fmt.Sprintf("%s is outside source root %s", sourcePath, t.sourceRoot), err)
	}

	backupPath := filepath.Join(t.backupRoot, rel)
	if err := os.MkdirAll(filepath.Dir(backupPath), 0o755); err != nil {
		return "", services.Wrap(services.ErrBackupWrite, "transfer", "create backup directory", filepath.Dir(backupPath), err)
	}

	// The backup area is append-only: a path, once written, is never replaced.
	// A fresh file at an already-backed-up relative path stays at its source.
	if _, err := os.Lstat(backupPath); err == nil {
		return "", services.Wrap(services.ErrBackupWrite, "transfer", "move original",
			backupPath+" already holds a backed-up original", nil)
	} else if !os.IsNotExist(err) {
		return "", services.Wrap(services.ErrBackupWrite, "transfer", "check backup path", backupPath, err)
	}

	if err := moveFile(sourcePath, backupPath); err != nil {
		return "", services.Wrap(services.ErrBackupWrite, "transfer", "move original", sourcePath, err)
	}

	stagedPath := filepath.Join(t.stagingDir, filepath.Base(sourcePath))
	if err := os.Link(backupPath, stagedPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", services.Wrap(services.ErrLinkConflict, "transfer", "link into staging",
				filepath.Base(sourcePath)+" already staged", nil)
		}
		return "", services.Wrap(services.ErrBackupWrite, "transfer", "link into staging", stagedPath, err)
	}

	t.logger.Debug("transferred",
		logging.String("backup", backupPath),
		logging.String("staged", stagedPath))
	return stagedPath, nil
}

// moveFile renames src to dst, falling back to a verified copy plus remove
// when the backup root lives on a different filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if err := copyFileVerified(src, dst); err != nil {
				return fmt.Errorf("copy across devices: %w", err)
			}
			if err := os.Remove(src); err != nil {
				return fmt.Errorf("remove source after copy: %w", err)
			}
			return nil
		}
		return err
	}
	return nil
}
