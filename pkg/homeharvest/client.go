// Package homeharvest provides a client for the HomeHarvest listing scrape
// service: property detail lookups and comparable "for rent" searches.
package homeharvest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/rentfolio/analyzer-cli/internal/resilience"
)

const defaultBaseURL = "http://localhost:8700"

// ListingType selects the market side of a search.
type ListingType string

const (
	ListingForSale ListingType = "for_sale"
	ListingForRent ListingType = "for_rent"
)

// Client talks to the scrape service.
type Client interface {
	// Property fetches the detail record for a single address.
	Property(ctx context.Context, address string) (*Property, error)

	// Search returns listings matching the query.
	Search(ctx context.Context, q SearchQuery) ([]Listing, error)
}

// SearchQuery filters a listing search. Location is an address or a
// city/state/zip string.
type SearchQuery struct {
	Location    string      `json:"location"`
	ListingType ListingType `json:"listing_type"`
	BedsMin     int         `json:"beds_min,omitempty"`
	BedsMax     int         `json:"beds_max,omitempty"`
	BathsMin    float64     `json:"baths_min,omitempty"`
	SqftMin     float64     `json:"sqft_min,omitempty"`
	SqftMax     float64     `json:"sqft_max,omitempty"`
	Limit       int         `json:"limit,omitempty"`
}

// Property is a scraped property detail record. Raw carries the full
// heterogeneous source record for normalization downstream.
type Property struct {
	Street       string         `json:"full_street_line"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	Zip          string         `json:"zip_code"`
	ListPrice    float64        `json:"list_price"`
	Beds         float64        `json:"beds"`
	Baths        float64        `json:"full_baths"`
	Sqft         *float64       `json:"sqft,omitempty"`
	Style        string         `json:"style"`
	UnitCount    *int           `json:"unit_count,omitempty"`
	RentEstimate *float64       `json:"rent_estimate,omitempty"`
	Photos       []string       `json:"photos,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}

// Listing is one search result.
type Listing struct {
	Street    string   `json:"full_street_line"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zip       string   `json:"zip_code"`
	ListPrice float64  `json:"list_price"`
	Beds      float64  `json:"beds"`
	Baths     float64  `json:"full_baths"`
	Sqft      *float64 `json:"sqft,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the minimum interval between requests.
func WithRateLimit(interval time.Duration) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a scrape-service client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Property(ctx context.Context, address string) (*Property, error) {
	if address == "" {
		return nil, eris.New("homeharvest: address is required")
	}

	var resp struct {
		Properties []Property `json:"properties"`
	}
	err := c.post(ctx, "/scrape", SearchQuery{Location: address, ListingType: ListingForSale, Limit: 1}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Properties) == 0 {
		return nil, nil
	}
	return &resp.Properties[0], nil
}

func (c *httpClient) Search(ctx context.Context, q SearchQuery) ([]Listing, error) {
	if q.Location == "" {
		return nil, eris.New("homeharvest: location is required")
	}

	var resp struct {
		Listings []Listing `json:"listings"`
	}
	if err := c.post(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	return resp.Listings, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "homeharvest: rate limiter wait")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "homeharvest: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "homeharvest: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "homeharvest: execute request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "homeharvest: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return resilience.NewLookupError(
			eris.Errorf("homeharvest: status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}

	return eris.Wrap(json.Unmarshal(respBody, out), "homeharvest: decode response")
}
