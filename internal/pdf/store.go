// Package pdf manages locally stored paper PDFs: download, lookup,
// DOI extraction, and opening in a reader.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/refsync/refsync/internal/citekey"
	"github.com/refsync/refsync/internal/paper"
)

// DownloadTimeout bounds a single PDF download.
const DownloadTimeout = 60 * time.Second

// ErrNotPDF is returned when a downloaded file is not a PDF.
var ErrNotPDF = fmt.Errorf("response is not a PDF")

// Store manages PDFs under a single directory.
type Store struct {
	dir        string
	httpClient *http.Client
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) StoreOption {
	return func(s *Store) {
		s.httpClient = hc
	}
}

// NewStore returns a PDF store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:        dir,
		httpClient: &http.Client{Timeout: DownloadTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filename generates the local file name for a paper's PDF:
// Surname_Year_arxivID.pdf, e.g. "Pasha_2024_2401.07041.pdf".
// Old-style IDs containing a slash have it replaced with an underscore.
func Filename(p paper.Paper) string {
	surname := citekey.SurnameToken(p.Authors)
	id := strings.ReplaceAll(p.ArxivID, "/", "_")
	return fmt.Sprintf("%s_%d_%s.pdf", surname, p.Published.Year(), id)
}

// Download fetches a paper's PDF and stores it locally. Returns the
// file name. If the file already exists it is not re-downloaded.
func (s *Store) Download(ctx context.Context, p paper.Paper) (string, error) {
	filename := Filename(p)
	path := filepath.Join(s.dir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.PDFURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading PDF for %s: %w", p.ArxivID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading PDF for %s: status %d", p.ArxivID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading PDF body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "pdf") && !bytes.HasPrefix(body, []byte("%PDF")) {
		return "", ErrNotPDF
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating PDF directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("saving PDF: %w", err)
	}
	return filename, nil
}

// Path returns the full path to a stored PDF, or "" if it doesn't exist.
func (s *Store) Path(filename string) string {
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Delete removes a stored PDF. Returns true if it existed.
func (s *Store) Delete(filename string) (bool, error) {
	path := filepath.Join(s.dir, filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("deleting PDF: %w", err)
	}
	return true, nil
}

// FindByArxivID scans the PDF directory for a file containing the
// arXiv ID. Useful for recovery when the database and disk disagree.
func (s *Store) FindByArxivID(arxivID string) (string, error) {
	clean := strings.ReplaceAll(arxivID, "/", "_")
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("scanning PDF directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".pdf") && strings.Contains(name, clean) {
			return name, nil
		}
	}
	return "", nil
}
