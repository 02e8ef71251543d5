package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/refsync/refsync/internal/paper"
)

const (
	// BaseURL is the arXiv Atom API endpoint.
	BaseURL = "https://export.arxiv.org/api/query"

	// DefaultTimeout bounds a single metadata fetch.
	DefaultTimeout = 30 * time.Second

	userAgent = "refsync/1.0 (reference library manager)"

	categoryScheme = "http://arxiv.org/schemas/atom"
)

// Errors returned by the arXiv client.
var (
	// ErrBadID indicates the input could not be parsed as an arXiv ID or URL.
	ErrBadID = errors.New("unrecognized arXiv ID or URL")

	// ErrNotFound indicates no paper exists for the requested ID.
	ErrNotFound = errors.New("paper not found on arXiv")

	// ErrAPIError indicates an unexpected response from the arXiv API.
	ErrAPIError = errors.New("arXiv API error")
)

// Client fetches paper metadata from the arXiv Atom API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates an arXiv API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// atomFeed mirrors the subset of the arXiv Atom response we consume.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string `xml:"id"`
	Title      string `xml:"title"`
	Summary    string `xml:"summary"`
	Published  string `xml:"published"`
	Updated    string `xml:"updated"`
	Authors    []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Categories []struct {
		Term   string `xml:"term,attr"`
		Scheme string `xml:"scheme,attr"`
	} `xml:"category"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
	DOI        string `xml:"doi"`
	JournalRef string `xml:"journal_ref"`
}

// Fetch retrieves paper metadata for an arXiv URL or ID. The returned
// paper has no cite key or BibTeX record; the caller allocates those
// against the library's existing key set.
func (c *Client) Fetch(ctx context.Context, urlOrID string) (*paper.Paper, error) {
	arxivID := ParseID(urlOrID)
	if arxivID == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadID, urlOrID)
	}
	baseID := NormalizeID(arxivID)

	url := fmt.Sprintf("%s?id_list=%s", c.baseURL, arxivID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching from arXiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %v", ErrAPIError, err)
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, arxivID)
	}

	entry := feed.Entries[0]
	// The API answers unknown IDs with a stub entry titled "Error".
	if entry.Title == "Error" && !strings.Contains(strings.ToLower(entry.ID), "abs/") {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, arxivID)
	}

	return entryToPaper(entry, baseID)
}

func entryToPaper(entry atomEntry, baseID string) (*paper.Paper, error) {
	title := CleanLatex(strings.TrimSpace(strings.ReplaceAll(entry.Title, "\n", " ")))
	abstract := CleanLatex(strings.TrimSpace(entry.Summary))

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, a.Name)
	}

	var categories []string
	for _, cat := range entry.Categories {
		if cat.Scheme == categoryScheme {
			categories = append(categories, cat.Term)
		}
	}
	if len(categories) == 0 && entry.PrimaryCategory.Term != "" {
		categories = []string{entry.PrimaryCategory.Term}
	}

	published, err := time.Parse(time.RFC3339, entry.Published)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing published date %q: %v", ErrAPIError, entry.Published, err)
	}
	updated := published
	if entry.Updated != "" {
		if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
			updated = t
		}
	}

	cleanID := baseID
	if idx := strings.Index(entry.ID, "/abs/"); idx >= 0 {
		cleanID = entry.ID[idx+len("/abs/"):]
	}

	return &paper.Paper{
		ArxivID:      baseID,
		Title:        title,
		Authors:      authors,
		Abstract:     abstract,
		Categories:   categories,
		Published:    published,
		Updated:      updated,
		ArxivURL:     "https://arxiv.org/abs/" + cleanID,
		PDFURL:       "https://arxiv.org/pdf/" + cleanID + ".pdf",
		AddedAt:      time.Now().UTC(),
		BibtexSource: paper.SourceArxiv,
		DOI:          strings.TrimSpace(entry.DOI),
		JournalRef:   strings.TrimSpace(entry.JournalRef),
	}, nil
}
