package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"spccli/internal/config"
	apierrors "spccli/internal/errors"
	"spccli/pkg/contracts/domain"
)

// SourceAPI names the REST extractor.
const SourceAPI = "api"

// ErrUnsupportedPayload is returned when a response is neither a list of
// objects nor an object holding such a list under "data".
var ErrUnsupportedPayload = errors.New("API response format not recognised, expected list or object with 'data' list")

const defaultAPITimeout = 30 * time.Second

// APIExtractor reads events from a JSON REST endpoint.
type APIExtractor struct {
	cfg     config.APIConfig
	client  *http.Client
	limiter *rate.Limiter
}

// APIOption customises an APIExtractor.
type APIOption func(*APIExtractor)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) APIOption {
	return func(e *APIExtractor) { e.client = c }
}

// NewAPIExtractor creates an extractor for cfg.
func NewAPIExtractor(cfg config.APIConfig, opts ...APIOption) (*APIExtractor, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	e := &APIExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
	if cfg.RPS > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name implements Extractor
func (e *APIExtractor) Name() string {
	return SourceAPI
}

// URL joins the base URL and endpoint with exactly one slash.
func (e *APIExtractor) URL() (string, error) {
	if e.cfg.BaseURL == "" {
		return "", apierrors.NewConfigError("API base URL is not set", ErrNotConfigured)
	}
	return strings.TrimRight(e.cfg.BaseURL, "/") + "/" + strings.TrimLeft(e.cfg.Endpoint, "/"), nil
}

// Extract implements Extractor
func (e *APIExtractor) Extract(ctx context.Context) Result {
	url, err := e.URL()
	if err != nil {
		return failed(SourceAPI, err)
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return failed(SourceAPI, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed(SourceAPI, apierrors.NewConfigError("invalid API URL", err))
	}
	req.Header.Set("Accept", "application/json")
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return failed(SourceAPI, apierrors.NewNetworkError("API request failed", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(SourceAPI, apierrors.NewNetworkError("failed to read API response", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(SourceAPI, apierrors.NewNetworkError(
			fmt.Sprintf("API returned %s", resp.Status), nil).
			WithContext("url", url).
			WithContext("status", resp.StatusCode))
	}

	table, err := ParsePayload(body)
	if err != nil {
		return failed(SourceAPI, apierrors.NewParsingError("failed to decode API response", err))
	}
	return Result{Table: table, Source: SourceAPI}
}

// ParsePayload converts a JSON list of objects, optionally wrapped in
// {"data": [...]}, into a table. Columns appear in first-seen order with the
// new keys of each object sorted.
func ParsePayload(body []byte) (domain.RawTable, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return domain.RawTable{}, err
	}

	if obj, ok := payload.(map[string]any); ok {
		if data, ok := obj["data"]; ok {
			payload = data
		}
	}

	items, ok := payload.([]any)
	if !ok {
		return domain.RawTable{}, ErrUnsupportedPayload
	}

	var table domain.RawTable
	index := make(map[string]int)
	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return domain.RawTable{}, ErrUnsupportedPayload
		}
		var fresh []string
		for k := range obj {
			if _, seen := index[k]; !seen {
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		for _, k := range fresh {
			index[k] = len(table.Columns)
			table.Columns = append(table.Columns, k)
		}
		objects = append(objects, obj)
	}

	for _, obj := range objects {
		row := make([]string, len(table.Columns))
		for k, v := range obj {
			row[index[k]] = cellString(v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
