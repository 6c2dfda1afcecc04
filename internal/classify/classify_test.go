package classify_test

import (
	"testing"

	"bindery/internal/classify"
)

func TestIsBookCandidate(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"book.epub", true},
		{"BOOK.EPUB", true},
		{"paper.pdf", true},
		{"comic.cbz", true},
		{"bundle.zip", true},
		{"novel.fb2", true},
		{"track.mp3", false},
		{"movie.mkv", false},
		{"noextension", false},
		{"archive.tar.gz", false},
	}
	for _, tc := range cases {
		if got := classify.IsBookCandidate(tc.name); got != tc.want {
			t.Errorf("IsBookCandidate(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIngestSetIsNarrower(t *testing.T) {
	// Archives pass the crawl gate but not the ingest gate.
	for _, name := range []string{"bundle.zip", "bundle.rar"} {
		if !classify.IsBookCandidate(name) {
			t.Errorf("expected %q to be a crawl candidate", name)
		}
		if classify.IsIngestible(name) {
			t.Errorf("expected %q to be rejected by the ingest set", name)
		}
	}
	if !classify.IsIngestible("book.epub") {
		t.Error("expected book.epub to be ingestible")
	}
}

func TestIsCatalogArtifact(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"metadata.db", true},
		{"METADATA.OPF", true},
		{"cover.jpg", true},
		{".hidden", true},
		{"book.epub.part", true},
		{"book.epub.crdownload", true},
		{"book.epub", false},
		{"cover-art-history.pdf", false},
	}
	for _, tc := range cases {
		if got := classify.IsCatalogArtifact(tc.name); got != tc.want {
			t.Errorf("IsCatalogArtifact(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsArtifactDir(t *testing.T) {
	if !classify.IsArtifactDir(".caltrash") {
		t.Error("expected .caltrash to be pruned")
	}
	if classify.IsArtifactDir("fiction") {
		t.Error("expected plain directories to be walked")
	}
}
