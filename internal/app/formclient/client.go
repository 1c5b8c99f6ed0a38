package formclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/seed"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Policy decides what happens when the backend is missing or failing
type Policy string

const (
	// PolicyStrict surfaces every backend failure
	PolicyStrict Policy = "strict"
	// PolicyDemoFallback serves the demo dataset and simulates submissions
	PolicyDemoFallback Policy = "demo-fallback"
)

const (
	formDataPath    = "/api/v1/form-data/"
	maxResponseSize = 10 << 20
	defaultTimeout  = 10 * time.Second
)

// Config configures the backend collaborator
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Policy    Policy
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
}

// Records is a fetched listing
type Records struct {
	Items []domain.StoredRecord
	Demo  bool
}

// Fetched is a single fetched record
type Fetched struct {
	Record domain.StoredRecord
	Demo   bool
}

// Submitted is the outcome of a create or update
type Submitted struct {
	ID        string
	Message   string
	Simulated bool
}

// Client talks to the form-data backend
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	fetches    singleflight.Group
	logger     zerolog.Logger
}

// New validates cfg and builds a client. A strict client requires a base URL.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Policy == "" {
		cfg.Policy = PolicyStrict
	}
	if cfg.Policy != PolicyStrict && cfg.Policy != PolicyDemoFallback {
		return nil, fmt.Errorf("unknown backend policy %q", cfg.Policy)
	}
	if cfg.BaseURL == "" && cfg.Policy == PolicyStrict {
		return nil, apperrors.ErrBackendNotConfigured
	}
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid backend base URL: %w", err)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "formclient").Logger(),
	}, nil
}

// DemoMode reports whether no backend is configured
func (c *Client) DemoMode() bool { return c.cfg.BaseURL == "" }

// Policy returns the configured failure policy
func (c *Client) Policy() Policy { return c.cfg.Policy }

// List fetches every stored record
func (c *Client) List(ctx context.Context) (Records, error) {
	if c.DemoMode() {
		return c.demoList()
	}
	body, err := c.do(ctx, http.MethodGet, formDataPath, nil)
	if err == nil {
		var items []domain.StoredRecord
		items, err = decodeList(body)
		if err == nil {
			return Records{Items: items}, nil
		}
	}
	if c.fallback(err) {
		c.logger.Warn().Err(err).Msg("Form list fetch failed, serving demo data")
		return c.demoList()
	}
	return Records{}, err
}

// Get fetches one record. Concurrent fetches of the same id share a request.
func (c *Client) Get(ctx context.Context, id string) (Fetched, error) {
	if c.DemoMode() {
		return c.demoRecord(id)
	}
	v, err, _ := c.fetches.Do(id, func() (any, error) {
		body, err := c.do(ctx, http.MethodGet, formDataPath+url.PathEscape(id), nil)
		if err != nil {
			return nil, err
		}
		rec, err := decodeRecord(payload(body))
		if err != nil {
			return nil, err
		}
		if rec.ID == "" {
			rec.ID = id
		}
		return rec, nil
	})
	if err != nil {
		if c.fallback(err) {
			c.logger.Warn().Err(err).Str("formId", id).Msg("Form fetch failed, serving demo data")
			return c.demoRecord(id)
		}
		return Fetched{}, err
	}
	rec := v.(domain.StoredRecord)
	rec.Record = *rec.Record.Clone()
	return Fetched{Record: rec}, nil
}

// Create posts a new record
func (c *Client) Create(ctx context.Context, r *domain.Record) (Submitted, error) {
	return c.submit(ctx, http.MethodPost, formDataPath, "", r)
}

// Update replaces the record with the given id
func (c *Client) Update(ctx context.Context, id string, r *domain.Record) (Submitted, error) {
	if id == "" {
		return Submitted{}, apperrors.NewBadRequestError("form id is required for updates")
	}
	return c.submit(ctx, http.MethodPut, formDataPath+url.PathEscape(id), id, r)
}

func (c *Client) submit(ctx context.Context, method, path, id string, r *domain.Record) (Submitted, error) {
	if c.DemoMode() {
		return c.simulated(id), nil
	}
	payloadBody, err := encodeRecord(r)
	if err != nil {
		return Submitted{}, fmt.Errorf("encode form record: %w", err)
	}
	body, err := c.do(ctx, method, path, payloadBody)
	if err != nil {
		// only transport failures are simulated, rejections always surface
		if c.cfg.Policy == PolicyDemoFallback && errors.Is(err, apperrors.ErrBackendUnavailable) {
			c.logger.Warn().Err(err).Str("method", method).Msg("Form submit failed, simulating success")
			return c.simulated(id), nil
		}
		return Submitted{}, err
	}
	out := Submitted{ID: submittedID(body), Message: gjson.GetBytes(body, "message").String()}
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

func (c *Client) simulated(id string) Submitted {
	if id == "" {
		id = "local-" + uuid.NewString()
	}
	return Submitted{ID: id, Message: "Form saved successfully (demo mode)!", Simulated: true}
}

// fallback reports whether a fetch failure should be replaced by demo data
func (c *Client) fallback(err error) bool {
	if c.cfg.Policy != PolicyDemoFallback {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (c *Client) demoList() (Records, error) {
	items, err := decodeList(seed.DemoForms())
	if err != nil {
		return Records{}, fmt.Errorf("decode demo dataset: %w", err)
	}
	return Records{Items: items, Demo: true}, nil
}

func (c *Client) demoRecord(id string) (Fetched, error) {
	raw, err := seed.DemoForm(id)
	if err != nil {
		return Fetched{}, err
	}
	rec, err := decodeRecord(gjson.ParseBytes(raw))
	if err != nil {
		return Fetched{}, fmt.Errorf("decode demo record: %w", err)
	}
	return Fetched{Record: rec, Demo: true}, nil
}

// do performs one request under the rate limiter and the request timeout
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBackendUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperrors.ErrBackendUnavailable, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeFailure(resp.StatusCode, respBody)
	}
	return respBody, nil
}
