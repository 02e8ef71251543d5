package ads

import (
	"context"
	"fmt"
	"net/http"
)

// ValidateKey checks an API key against the search endpoint without
// storing it. The returned message is suitable for display.
func ValidateKey(ctx context.Context, apiKey string, opts ...ClientOption) (bool, string) {
	if len(apiKey) < 10 {
		return false, "API key appears to be invalid (too short)"
	}

	c, err := NewClient(apiKey, opts...)
	if err != nil {
		return false, err.Error()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/query?q=star&rows=1", nil)
	if err != nil {
		return false, fmt.Sprintf("connection error: %v", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Sprintf("connection error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("connection error: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, "API key is valid"
	case http.StatusUnauthorized:
		return false, "invalid API key"
	case http.StatusForbidden:
		return false, "API key lacks required permissions"
	default:
		return false, fmt.Sprintf("unexpected response: %d", resp.StatusCode)
	}
}
