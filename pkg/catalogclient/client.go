// Package catalogclient is an HTTP client for the catalog API.
package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type NewItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type Page struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// Stats mirrors the server snapshot. AveragePrice is nil for an empty catalog.
type Stats struct {
	Total        int      `json:"total"`
	AveragePrice *float64 `json:"averagePrice"`
}

// ListOptions are sent as query parameters. A nil Limit is omitted.
type ListOptions struct {
	Query  string
	Limit  *int
	Offset int
}

var (
	ErrBadRequest  = errors.New("catalog rejected request")
	ErrNotFound    = errors.New("catalog item not found")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

// APIError carries the server's error message. It unwraps to one of the
// sentinel errors above.
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: status=%d", e.kind, e.Status)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

type Client struct {
	BaseURL string
	Client  *http.Client
}

func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) List(ctx context.Context, opts ListOptions) (Page, error) {
	q := url.Values{}
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.Limit != nil {
		q.Set("limit", strconv.Itoa(*opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var p Page
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &p)
	return p, err
}

func (c *Client) Get(ctx context.Context, id int64) (Item, error) {
	var it Item
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/items/%d", id), nil, http.StatusOK, &it)
	return it, err
}

func (c *Client) Create(ctx context.Context, n NewItem) (Item, error) {
	var it Item
	err := c.do(ctx, http.MethodPost, "/api/items", n, http.StatusCreated, &it)
	return it, err
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, http.StatusOK, &s)
	return s, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &body)

	e := &APIError{Status: resp.StatusCode, Message: body.Error}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		e.kind = ErrNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		e.kind = ErrBadRequest
	case resp.StatusCode >= 500:
		e.kind = ErrUnavailable
	default:
		e.kind = ErrBadStatus
	}
	return e
}
