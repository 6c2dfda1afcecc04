package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"bindery/internal/services"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI("/books/library", WithBinary("/opt/calibre/calibredb"))
	if cli.binary != "/opt/calibre/calibredb" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestAddRequiresFileAndLibrary(t *testing.T) {
	cli := NewCLI("/books/library")
	if err := cli.Add(context.Background(), "", true); err == nil {
		t.Fatal("expected error when file path is empty")
	}
	empty := NewCLI("")
	if err := empty.Add(context.Background(), "/staging/x.epub", true); err == nil {
		t.Fatal("expected error when library directory is empty")
	}
}

func captureCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		*captured = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "CATALOG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestAddPassesDuplicatesFlag(t *testing.T) {
	var capturedArgs []string
	captureCommand(t, "success", &capturedArgs)

	cli := NewCLI("/books/library")
	if err := cli.Add(context.Background(), "/staging/x.epub", true); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	found := false
	for _, arg := range capturedArgs {
		if arg == "--duplicates" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected --duplicates in args, got %v", capturedArgs)
	}
}

func TestAddFailureIsCatalogAddError(t *testing.T) {
	var capturedArgs []string
	captureCommand(t, "fail", &capturedArgs)

	cli := NewCLI("/books/library")
	err := cli.Add(context.Background(), "/staging/x.epub", true)
	if !errors.Is(err, services.ErrCatalogAdd) {
		t.Fatalf("expected ErrCatalogAdd, got %v", err)
	}
}

func TestListDecodesMachineOutput(t *testing.T) {
	var capturedArgs []string
	captureCommand(t, "list", &capturedArgs)

	cli := NewCLI("/books/library")
	entries, err := cli.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !HasFilename(entries, "x.epub") {
		t.Fatal("expected x.epub to be found in entry formats")
	}
	if HasFilename(entries, "absent.epub") {
		t.Fatal("did not expect absent.epub to match")
	}
}

func TestHasFilenameIsCaseInsensitiveOnBaseName(t *testing.T) {
	entries := []Entry{{ID: 1, Formats: []string{"/library/Author/Title (1)/Title.EPUB"}}}
	if !HasFilename(entries, "title.epub") {
		t.Fatal("expected case-insensitive base name match")
	}
}

// TestHelperProcess is not a real test: it stands in for the catalog binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("CATALOG_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "list":
		fmt.Print(`[{"id":1,"formats":["/library/A/x (1)/x.epub"]},{"id":2,"formats":["/library/B/y (2)/y.pdf"]}]`)
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "catalog unavailable")
		os.Exit(1)
	}
	os.Exit(2)
}
