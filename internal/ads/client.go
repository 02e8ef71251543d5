// Package ads talks to the NASA ADS API and reconciles local papers
// against its bibliographic records.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/refsync/refsync/internal/arxiv"
)

const (
	// BaseURL is the ADS API base URL.
	BaseURL = "https://api.adsabs.harvard.edu/v1"

	// MaxBatchRows caps the number of rows requested per search call.
	MaxBatchRows = 2000

	// DefaultTimeout bounds a single API call. The export endpoint can be
	// slow on large batches, so this is generous.
	DefaultTimeout = 60 * time.Second

	// RateLimit keeps well under the ADS per-day quota while still
	// letting a batch of calls through quickly.
	RateLimit = 5.0

	// searchFields are the fields requested from the search endpoint.
	searchFields = "bibcode,doi,pub,volume,page,year,doctype,identifier,title,author"
)

// Client is a rate-limited HTTP client for the ADS API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
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
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates an ADS API client. The API key is required; an empty
// key fails construction rather than the first call.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		apiKey:     apiKey,
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// bareArxivID matches a new-style arXiv ID appearing without a prefix in
// the ADS identifier list.
var bareArxivID = regexp.MustCompile(`^\d+\.\d+$`)

// SearchByArxivIDs looks up papers by their arXiv IDs in a single batch
// query. The returned map is keyed by the requested IDs; absent keys mean
// not found. ADS may report identifiers with version suffixes, so IDs are
// compared version-stripped on both sides.
func (c *Client) SearchByArxivIDs(ctx context.Context, arxivIDs []string) (map[string]Record, error) {
	results := make(map[string]Record)
	if len(arxivIDs) == 0 {
		return results, nil
	}

	quoted := make([]string, len(arxivIDs))
	for i, id := range arxivIDs {
		quoted[i] = "arXiv:" + id
	}
	query := fmt.Sprintf("identifier:(%s)", strings.Join(quoted, " OR "))

	rows := len(arxivIDs)
	if rows > MaxBatchRows {
		rows = MaxBatchRows
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("fl", searchFields)
	params.Set("rows", fmt.Sprint(rows))

	body, err := c.get(ctx, "/search/query?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing search response: %v", ErrAPIError, err)
	}

	for _, doc := range parsed.Response.Docs {
		for _, ident := range doc.Identifiers {
			var aid string
			switch {
			case strings.HasPrefix(ident, "arXiv:"):
				aid = strings.TrimPrefix(ident, "arXiv:")
			case bareArxivID.MatchString(ident):
				aid = ident
			default:
				continue
			}

			for _, requested := range arxivIDs {
				if arxiv.NormalizeID(requested) == arxiv.NormalizeID(aid) {
					results[requested] = doc
					break
				}
			}
		}
	}

	return results, nil
}

// FetchBibtex retrieves BibTeX records for a set of bibcodes, keyed by
// bibcode. Bibcodes missing from the export are absent from the map.
func (c *Client) FetchBibtex(ctx context.Context, bibcodes []string) (map[string]string, error) {
	if len(bibcodes) == 0 {
		return map[string]string{}, nil
	}

	payload, err := json.Marshal(map[string][]string{"bibcode": bibcodes})
	if err != nil {
		return nil, fmt.Errorf("encoding export request: %w", err)
	}

	body, err := c.post(ctx, "/export/bibtex", payload)
	if err != nil {
		return nil, err
	}

	var parsed exportResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing export response: %v", ErrAPIError, err)
	}

	return splitBibtexEntries(parsed.Export, bibcodes), nil
}

// splitBibtexEntries splits a combined export blob into individual entries
// and matches each to its bibcode. ADS uses the bibcode as the entry's
// cite key, so containment is a reliable match.
func splitBibtexEntries(blob string, bibcodes []string) map[string]string {
	var entries []string
	var current []string

	for _, line := range strings.Split(blob, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "@") && len(current) > 0 {
			entries = append(entries, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		entries = append(entries, strings.Join(current, "\n"))
	}

	results := make(map[string]string)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		for _, bibcode := range bibcodes {
			if strings.Contains(entry, bibcode) {
				results[bibcode] = entry
				break
			}
		}
	}

	return results
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
