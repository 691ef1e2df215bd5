// Package nominatim reverse-geocodes coordinates against a Nominatim
// instance, implementing ports.Geocoder.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
)

const userAgent = "dispatchmap/1.0"

// Client calls the Nominatim /reverse endpoint.
type Client struct {
	baseURL string
	email   string
	http    *http.Client
}

// New creates a client. email identifies the operator per the public
// Nominatim usage policy; pass "" for self-hosted instances.
func New(baseURL, email string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		email:   email,
		http:    &http.Client{Timeout: timeout},
	}
}

// reverseResponse is the subset of the Nominatim jsonv2 payload we read.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Reverse resolves p to addresses. HTTP and decode failures are returned
// as errors; a coordinate with no address maps to ZERO_RESULTS.
func (c *Client) Reverse(ctx context.Context, p domain.Point) (*ports.GeocodeResult, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	if c.email != "" {
		q.Set("email", c.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ports.GeocodeResult{Status: "HTTP_" + strconv.Itoa(resp.StatusCode)}, nil
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Nominatim reports "Unable to geocode" in-band with a 200.
	if body.Error != "" || body.DisplayName == "" {
		return &ports.GeocodeResult{Status: ports.GeocodeStatusZeroResults}, nil
	}
	return &ports.GeocodeResult{
		Status:    ports.GeocodeStatusOK,
		Addresses: []string{body.DisplayName},
	}, nil
}
