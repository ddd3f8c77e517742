// Package parcelrec provides a client for the parcel feature-record
// provider: authoritative unit counts, tax assessment history, and
// structural features.
package parcelrec

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/rentfolio/analyzer-cli/internal/resilience"
)

const defaultBaseURL = "https://api.parcelrecords.io/v2"

// Client fetches parcel feature records.
type Client interface {
	// Record returns the feature record for an address, or nil when the
	// parcel is unknown.
	Record(ctx context.Context, address string) (*Record, error)
}

// Record is the provider's view of one parcel.
type Record struct {
	Units          *int              `json:"units,omitempty"`
	YearBuilt      *int              `json:"yearBuilt,omitempty"`
	TaxAssessments []TaxAssessment   `json:"taxAssessments,omitempty"`
	Features       map[string]string `json:"features,omitempty"`
}

// TaxAssessment is one year of assessed value.
type TaxAssessment struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
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

// WithRateLimit sets the minimum interval between requests.
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

// NewClient creates a feature-record client.
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

func (c *httpClient) Record(ctx context.Context, address string) (*Record, error) {
	if address == "" {
		return nil, eris.New("parcelrec: address is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "parcelrec: rate limiter wait")
	}

	q := url.Values{}
	q.Set("address", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/records?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "parcelrec: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "parcelrec: execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "parcelrec: read response")
	}

	// Unknown parcels are not an error.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.NewLookupError(
			eris.Errorf("parcelrec: status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, eris.Wrap(err, "parcelrec: decode response")
	}
	return &rec, nil
}
