package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bindery/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, renderError(err))
		}
		os.Exit(1)
	}
}

// renderError flags unrecoverable setup failures so operators can tell them
// apart from retryable per-run errors.
func renderError(err error) string {
	if services.IsFatal(err) {
		return "setup error: " + err.Error()
	}
	return err.Error()
}
