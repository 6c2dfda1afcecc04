package services_test

import (
	"errors"
	"fmt"
	"testing"

	"bindery/internal/services"
)

func TestWrapTagsWithMarker(t *testing.T) {
	base := errors.New("disk full")
	err := services.Wrap(services.ErrBackupWrite, "transfer", "move original", "cannot write backup", base)

	if !errors.Is(err, services.ErrBackupWrite) {
		t.Fatalf("expected ErrBackupWrite marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapNilMarkerFallsBackToTransient(t *testing.T) {
	err := services.Wrap(nil, "ingest", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient fallback, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrConfiguration, "preflight", "", "source root missing", nil), true},
		{services.Wrap(services.ErrNotFound, "preflight", "", "calibredb not on PATH", nil), true},
		{services.Wrap(services.ErrHashUnavailable, "crawler", "", "", nil), false},
		{services.Wrap(services.ErrCatalogAdd, "ingest", "", "", nil), false},
		{fmt.Errorf("plain"), false},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.fatal {
			t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}
