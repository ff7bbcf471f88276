// Package airtable is a minimal Airtable REST client covering the operations
// the reconciliation engine needs: filtered list, update, create.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Fields is the writable field set of a record.
type Fields map[string]any

// Record is a single store record.
type Record struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Str returns a string field value, tolerating absent or non-string values.
func (r Record) Str(field string) string {
	if s, ok := r.Fields[field].(string); ok {
		return s
	}
	return ""
}

// Query selects records for List.
type Query struct {
	FilterFormula Formula
	MaxRecords    int
}

// Client defines the store operations used by the engine.
type Client interface {
	List(ctx context.Context, q Query) ([]Record, error)
	Update(ctx context.Context, id string, fields Fields) (*Record, error)
	Create(ctx context.Context, fields Fields) (*Record, error)
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

// WithLimiter throttles all store calls through a shared rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	apiKey  string
	baseID  string
	table   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Airtable client bound to one base and table.
func NewClient(apiKey, baseID, table string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseID:  baseID,
		table:   table,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(c.table))
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// List fetches records matching the filter formula, following pagination
// offsets until exhaustion or q.MaxRecords.
func (c *httpClient) List(ctx context.Context, q Query) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		if err := c.wait(ctx); err != nil {
			return nil, eris.Wrap(err, "airtable: rate limit")
		}

		params := url.Values{}
		if q.FilterFormula != "" {
			params.Set("filterByFormula", string(q.FilterFormula))
		}
		if q.MaxRecords > 0 {
			params.Set("maxRecords", strconv.Itoa(q.MaxRecords))
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL()+"?"+params.Encode(), nil)
		if err != nil {
			return nil, eris.Wrap(err, "airtable: create request")
		}

		var out listResponse
		if err := c.send(req, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Records...)

		if out.Offset == "" || (q.MaxRecords > 0 && len(all) >= q.MaxRecords) {
			break
		}
		offset = out.Offset
	}

	if q.MaxRecords > 0 && len(all) > q.MaxRecords {
		all = all[:q.MaxRecords]
	}
	return all, nil
}

type writeRequest struct {
	Fields   Fields `json:"fields"`
	Typecast bool   `json:"typecast,omitempty"`
}

// Update patches the given fields on an existing record.
func (c *httpClient) Update(ctx context.Context, id string, fields Fields) (*Record, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "airtable: rate limit")
	}

	body, err := json.Marshal(writeRequest{Fields: fields})
	if err != nil {
		return nil, eris.Wrap(err, "airtable: marshal update")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.tableURL()+"/"+url.PathEscape(id), bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "airtable: create request")
	}

	var rec Record
	if err := c.send(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new record with the given fields.
func (c *httpClient) Create(ctx context.Context, fields Fields) (*Record, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "airtable: rate limit")
	}

	body, err := json.Marshal(writeRequest{Fields: fields})
	if err != nil {
		return nil, eris.Wrap(err, "airtable: marshal create")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(), bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "airtable: create request")
	}

	var rec Record
	if err := c.send(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// apiError is Airtable's error envelope. The error member is either a bare
// string ("NOT_FOUND") or an object with type and message.
type apiError struct {
	Error json.RawMessage `json:"error"`
}

type apiErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

var unknownFieldRe = regexp.MustCompile(`[Uu]nknown field name:?\s*"?([^"]+)"?`)

func (c *httpClient) send(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "airtable: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "airtable: read response")
	}

	if resp.StatusCode >= 400 {
		return c.classifyError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "airtable: unmarshal response")
		}
	}
	return nil
}

// classifyError maps error responses onto the typed errors callers dispatch
// on: base/table misconfiguration is fatal, unknown write fields drive the
// schema-degradation path, everything else surfaces as a wrapped error.
func (c *httpClient) classifyError(status int, body []byte) error {
	var envelope apiError
	detail := apiErrorDetail{}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		if err := json.Unmarshal(envelope.Error, &detail); err != nil {
			// Bare string form, e.g. {"error": "NOT_FOUND"}.
			var s string
			if json.Unmarshal(envelope.Error, &s) == nil {
				detail.Type = s
			}
		}
	}

	switch {
	case status == http.StatusNotFound,
		detail.Type == "NOT_FOUND",
		detail.Type == "TABLE_NOT_FOUND",
		detail.Type == "MODEL_ID_NOT_FOUND":
		return eris.Wrapf(ErrNotFound, "status %d", status)
	case detail.Type == "UNKNOWN_FIELD_NAME":
		field := ""
		if m := unknownFieldRe.FindStringSubmatch(detail.Message); len(m) > 1 {
			field = m[1]
		}
		return &UnknownFieldError{Field: field}
	}

	return eris.Errorf("airtable: unexpected status %d: %s", status, string(body))
}
