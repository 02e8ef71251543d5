package pdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/refsync/refsync/internal/paper"
)

func samplePaper() paper.Paper {
	return paper.Paper{
		ArxivID:   "2401.07041",
		Authors:   []string{"Imad Pasha", "Jane Smith"},
		Published: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		PDFURL:    "https://arxiv.org/pdf/2401.07041",
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name  string
		paper paper.Paper
		want  string
	}{
		{"new style id", samplePaper(), "Pasha_2024_2401.07041.pdf"},
		{
			"old style id",
			paper.Paper{
				ArxivID:   "astro-ph/0601001",
				Authors:   []string{"Jane Smith"},
				Published: time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			"Smith_2006_astro-ph_0601001.pdf",
		},
		{
			"no authors",
			paper.Paper{
				ArxivID:   "2401.00001",
				Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			"Unknown_2024_2401.00001.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.paper); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.5 fake content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	store := NewStore(dir)
	p := samplePaper()
	p.PDFURL = srv.URL

	filename, err := store.Download(context.Background(), p)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filename != "Pasha_2024_2401.07041.pdf" {
		t.Errorf("filename = %q", filename)
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("reading saved PDF: %v", err)
	}
	if string(data) != "%PDF-1.5 fake content" {
		t.Errorf("saved content = %q", data)
	}
}

func TestDownloadSkipsExisting(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("%PDF-1.5"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	store := NewStore(dir)
	p := samplePaper()
	p.PDFURL = srv.URL

	if _, err := store.Download(context.Background(), p); err != nil {
		t.Fatalf("first Download: %v", err)
	}
	if _, err := store.Download(context.Background(), p); err != nil {
		t.Fatalf("second Download: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestDownloadRejectsNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	store := NewStore(t.TempDir())
	p := samplePaper()
	p.PDFURL = srv.URL

	if _, err := store.Download(context.Background(), p); err != ErrNotPDF {
		t.Errorf("Download err = %v, want ErrNotPDF", err)
	}
}

func TestDownloadSniffsMissingContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("%PDF-1.5 body"))
	}))
	defer srv.Close()

	store := NewStore(t.TempDir())
	p := samplePaper()
	p.PDFURL = srv.URL

	if _, err := store.Download(context.Background(), p); err != nil {
		t.Errorf("Download err = %v, want magic-byte sniff to accept", err)
	}
}

func TestPathAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if got := store.Path("missing.pdf"); got != "" {
		t.Errorf("Path for missing file = %q, want empty", got)
	}

	name := "Pasha_2024_2401.07041.pdf"
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := store.Path(name); got != filepath.Join(dir, name) {
		t.Errorf("Path = %q", got)
	}

	deleted, err := store.Delete(name)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("expected deletion of existing file")
	}
	deleted, err = store.Delete(name)
	if err != nil {
		t.Fatalf("Delete (second): %v", err)
	}
	if deleted {
		t.Error("expected no-op deletion of missing file")
	}
}

func TestFindByArxivID(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	files := []string{
		"Pasha_2024_2401.07041.pdf",
		"Smith_2006_astro-ph_0601001.pdf",
		"notes.txt",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.FindByArxivID("2401.07041")
	if err != nil {
		t.Fatalf("FindByArxivID: %v", err)
	}
	if got != "Pasha_2024_2401.07041.pdf" {
		t.Errorf("FindByArxivID = %q", got)
	}

	got, err = store.FindByArxivID("astro-ph/0601001")
	if err != nil {
		t.Fatalf("FindByArxivID: %v", err)
	}
	if got != "Smith_2006_astro-ph_0601001.pdf" {
		t.Errorf("FindByArxivID old-style = %q", got)
	}

	got, err = store.FindByArxivID("9999.99999")
	if err != nil {
		t.Fatalf("FindByArxivID: %v", err)
	}
	if got != "" {
		t.Errorf("FindByArxivID missing = %q, want empty", got)
	}
}

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"plain", "see doi:10.3847/1538-4357/ad5011 for details", "10.3847/1538-4357/ad5011"},
		{"trailing punctuation", "published (10.1093/mnras/stab123).", "10.1093/mnras/stab123"},
		{"none", "no identifiers here", ""},
		{"too short", "10.1/x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findDOI(tt.text); got != tt.want {
				t.Errorf("findDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
