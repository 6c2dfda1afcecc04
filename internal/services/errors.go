package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHashUnavailable marks files that vanished or were unreadable during
	// hashing. The file is skipped and left in place for a future pass.
	ErrHashUnavailable = errors.New("hash unavailable")
	// ErrClassification marks files whose extension is outside the supported set.
	ErrClassification = errors.New("classification rejected")
	// ErrBackupWrite marks failures creating the backup mirror or moving the
	// original into it. The source file is untouched and safe to retry.
	ErrBackupWrite = errors.New("backup write error")
	// ErrLinkConflict marks a same-named file already present in staging.
	// Operator intervention is implied: content dedup has not run for this file.
	ErrLinkConflict = errors.New("staging link conflict")
	// ErrCatalogAdd marks a failed catalog add. The staged file is retained and
	// retried on the next cycle.
	ErrCatalogAdd = errors.New("catalog add failure")
	// ErrConfiguration marks setup problems that abort the run entirely.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing external collaborators (catalog tool, roots).
	ErrNotFound = errors.New("not found")
	// ErrTransient is the fallback marker for retryable failures.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the surrounding run rather
// than being converted into a pass counter. Only setup-time errors are fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrNotFound)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
