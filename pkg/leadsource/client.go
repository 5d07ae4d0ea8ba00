// Package leadsource provides a client for the analytical lead query
// service over the public CNPJ registry.
package leadsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/resilience"
)

const userAgent = "ai-assistpro/1.0"

// Client defines the lead source operations.
type Client interface {
	// Query fetches leads opened within the capture window for a CNAE.
	Query(ctx context.Context, cfg model.CaptureConfig) ([]model.Lead, error)
	// Stats aggregates lead counts for a CNAE over a trailing window.
	Stats(ctx context.Context, cnae string, days int) (*model.LeadStats, error)
}

// Option configures the lead source client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the outbound request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

// NewClient creates a lead source client. The default rate limit is two
// requests per second; five consecutive failures open the circuit for a
// minute.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		breaker: resilience.NewCircuitBreaker("leadsource", 5, time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type queryResponse struct {
	Leads []model.Lead `json:"leads"`
	Total int          `json:"total"`
}

func (c *httpClient) Query(ctx context.Context, cfg model.CaptureConfig) ([]model.Lead, error) {
	if cfg.CNAE == "" {
		return nil, eris.New("leadsource: cnae required")
	}

	q := url.Values{}
	q.Set("cnae", cfg.CNAE)
	q.Set("window_days", strconv.Itoa(cfg.WindowDays))
	if cfg.UFFilter != "" {
		q.Set("uf", cfg.UFFilter)
	}
	if cfg.Limit > 0 {
		q.Set("limit", strconv.Itoa(cfg.Limit))
	}

	body, err := c.get(ctx, "/v1/leads", q)
	if err != nil {
		return nil, err
	}

	var result queryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "leadsource: unmarshal query response")
	}
	return result.Leads, nil
}

func (c *httpClient) Stats(ctx context.Context, cnae string, days int) (*model.LeadStats, error) {
	if cnae == "" {
		return nil, eris.New("leadsource: cnae required")
	}

	q := url.Values{}
	q.Set("window_days", strconv.Itoa(days))

	body, err := c.get(ctx, "/v1/leads/stats/"+url.PathEscape(cnae), q)
	if err != nil {
		return nil, err
	}

	var result model.LeadStats
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "leadsource: unmarshal stats response")
	}
	return &result, nil
}

// get performs a rate-limited, circuit-guarded GET and returns the body.
// Transient statuses (408, 429, 5xx) come back as TransientError so the
// caller's executor can retry them.
func (c *httpClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "leadsource: rate limiter wait")
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "leadsource: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.Failure()
		return nil, resilience.NewTransientError(eris.Wrap(err, "leadsource: request failed"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.Failure()
		return nil, eris.Wrap(err, "leadsource: read response body")
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		c.breaker.Failure()
		return nil, resilience.NewTransientError(
			eris.Errorf("leadsource: status %d: %s", resp.StatusCode, string(body)),
			resp.StatusCode,
		)
	}
	if resp.StatusCode != http.StatusOK {
		c.breaker.Failure()
		return nil, eris.Errorf("leadsource: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	c.breaker.Success()
	return body, nil
}
