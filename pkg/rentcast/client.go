// Package rentcast provides a client for the RentCast long-term rent AVM.
// It is the primary rent signal source for the analyzer.
package rentcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/rentfolio/analyzer-cli/internal/resilience"
)

const defaultBaseURL = "https://api.rentcast.io/v1"

// Client fetches rent estimates from the RentCast API.
type Client interface {
	// RentEstimate returns the AVM rent estimate for an address.
	RentEstimate(ctx context.Context, req EstimateRequest) (*Estimate, error)
}

// EstimateRequest identifies the property to estimate. Beds, baths, sqft,
// and property type are optional but improve the estimate.
type EstimateRequest struct {
	Address      string
	Beds         float64
	Baths        float64
	Sqft         *float64
	PropertyType string
}

// Estimate is the AVM response: a point estimate, a range, and zero or more
// comparable listings.
type Estimate struct {
	Rent          float64      `json:"rent"`
	RentRangeLow  float64      `json:"rentRangeLow"`
	RentRangeHigh float64      `json:"rentRangeHigh"`
	Comparables   []Comparable `json:"comparables"`
}

// Comparable is one comparable rental listing backing the estimate.
type Comparable struct {
	FormattedAddress string  `json:"formattedAddress"`
	Price            float64 `json:"price"`
	Bedrooms         float64 `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
	SquareFootage    float64 `json:"squareFootage"`
	Distance         float64 `json:"distance"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
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

// WithRateLimit sets the minimum interval between requests. Provider terms
// allow one request per second by default.
func WithRateLimit(interval time.Duration) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a RentCast API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) RentEstimate(ctx context.Context, req EstimateRequest) (*Estimate, error) {
	if req.Address == "" {
		return nil, eris.New("rentcast: address is required")
	}

	// Serialize calls to respect the provider rate limit; a call arriving
	// early waits for the interval rather than failing.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rentcast: rate limiter wait")
	}

	q := url.Values{}
	q.Set("address", req.Address)
	if req.Beds > 0 {
		q.Set("bedrooms", fmt.Sprintf("%g", req.Beds))
	}
	if req.Baths > 0 {
		q.Set("bathrooms", fmt.Sprintf("%g", req.Baths))
	}
	if req.Sqft != nil && *req.Sqft > 0 {
		q.Set("squareFootage", fmt.Sprintf("%g", *req.Sqft))
	}
	if req.PropertyType != "" {
		q.Set("propertyType", req.PropertyType)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/avm/rent/long-term?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: create request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "rentcast: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resilience.NewLookupError(
			eris.Errorf("rentcast: status %d: %s", resp.StatusCode, truncate(body, 200)),
			resp.StatusCode,
		)
	}

	var est Estimate
	if err := json.Unmarshal(body, &est); err != nil {
		return nil, eris.Wrap(err, "rentcast: decode response")
	}
	return &est, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
