package jaspar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public JASPAR 2020 REST endpoint.
const DefaultBaseURL = "https://jaspar2020.genereg.net"

// Client talks to the JASPAR REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type matrixResponse struct {
	MatrixID string               `json:"matrix_id"`
	Name     string               `json:"name"`
	PFM      map[string][]float64 `json:"pfm"`
}

// Fetch downloads the count matrix for id (e.g. "MA0114.4").
func (c *Client) Fetch(ctx context.Context, id string) (Matrix, error) {
	var m Matrix
	u := fmt.Sprintf("%s/api/v1/matrix/%s/", c.BaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return m, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tfbscan")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return m, fmt.Errorf("jaspar: fetch %s: %w", id, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return m, fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return m, fmt.Errorf("jaspar: fetch %s: status %d", id, resp.StatusCode)
	}
	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return m, fmt.Errorf("jaspar: decode %s: %w", id, err)
	}
	m.ID = id
	m.Name = body.Name
	for i := 0; i < 4; i++ {
		row, ok := body.PFM[string(letters[i])]
		if !ok {
			return m, fmt.Errorf("jaspar: %s: pfm has no %c row", id, letters[i])
		}
		m.Counts[i] = row
	}
	return m, nil
}
