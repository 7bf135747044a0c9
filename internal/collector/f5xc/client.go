package f5xc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// apiObject is one item of a platform list response
type apiObject struct {
	Metadata map[string]interface{} `json:"metadata"`
	Spec     map[string]interface{} `json:"spec"`
}

// apiList is the envelope every platform list endpoint returns
type apiList struct {
	Items []apiObject `json:"items"`
}

// client is an authenticated HTTP client for the platform API with
// client-side rate limiting.
type client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newClient(baseURL, apiToken string, requestsPerSecond float64) *client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// list performs an authenticated GET of a namespaced list endpoint
func (c *client) list(ctx context.Context, endpoint, namespace string) (*apiList, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s?namespace=%s", c.baseURL, endpoint, url.QueryEscape(namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "APIToken "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, endpoint, string(body))
	}

	var out apiList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return &out, nil
}
