package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/pkg/kit"
)

var mockItems = []catalog.Item{
	{ID: 1, Name: "Apple", Category: "Fruit", Price: 10},
	{ID: 2, Name: "Banana", Category: "Fruit", Price: 20},
	{ID: 3, Name: "Orange", Category: "Fruit", Price: 30},
	{ID: 4, Name: "Mango", Category: "Tropical", Price: 15},
}

type failingStore struct{}

func (failingStore) Load(context.Context) ([]catalog.Item, error) {
	return nil, &catalog.StorageError{Op: "read", Err: errors.New("read error")}
}

func (failingStore) Save(context.Context, []catalog.Item) error {
	return &catalog.StorageError{Op: "write", Err: errors.New("write error")}
}

func (failingStore) Ping(context.Context) error { return errors.New("down") }

func newCatalogTS(t *testing.T, store catalog.Store, deps catalog.HTTPDeps) *httptest.Server {
	t.Helper()

	svc := catalog.NewService(store, nil, zap.NewNop())
	s := &catalog.Server{Service: svc, Log: zap.NewNop()}

	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	deps.Service = "catalog"

	ts := httptest.NewServer(catalog.NewHandler(s, deps))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodePage(t *testing.T, raw []byte) catalog.Page {
	t.Helper()
	var p catalog.Page
	require.NoError(t, json.Unmarshal(raw, &p), "body=%s", raw)
	return p
}

func TestAPI_ListItems(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(mockItems...), catalog.HTTPDeps{})

	tests := []struct {
		name      string
		query     string
		wantIDs   []int64
		wantTotal int
	}{
		{"all items", "", []int64{1, 2, 3, 4}, 4},
		{"filter by q", "?q=an", []int64{2, 3, 4}, 3},
		{"limit", "?limit=2", []int64{1, 2}, 4},
		{"offset", "?offset=2", []int64{3, 4}, 4},
		{"filter offset limit", "?q=a&offset=1&limit=2", []int64{2, 3}, 4},
		{"offset beyond end", "?offset=50", []int64{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/items"+tt.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body=%s", raw)

			p := decodePage(t, raw)
			ids := make([]int64, 0, len(p.Items))
			for _, it := range p.Items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, p.Total)
		})
	}
}

func TestAPI_ListItemsInvalidParams(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(mockItems...), catalog.HTTPDeps{})

	for _, q := range []string{"?limit=-10", "?offset=-1", "?limit=abc", "?limit=", "?offset=", "?q=an&limit="} {
		resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/items"+q, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "query=%s", q)

		var er kit.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &er))
		assert.NotEmpty(t, er.Error)
		assert.NotEmpty(t, er.RequestID)
	}
}

func TestAPI_GetItem(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(mockItems...), catalog.HTTPDeps{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/items/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var it catalog.Item
	require.NoError(t, json.Unmarshal(raw, &it))
	assert.Equal(t, mockItems[1], it)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/items/-3", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/api/items/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "999")
}

func TestAPI_CreateItem(t *testing.T) {
	store := catalog.NewMemStore(mockItems...)
	ts := newCatalogTS(t, store, catalog.HTTPDeps{})

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/items", map[string]any{
		"name": "Pineapple", "category": "Fruit", "price": 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body=%s", raw)

	var created catalog.Item
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, catalog.Item{ID: 5, Name: "Pineapple", Category: "Fruit", Price: 50}, created)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/api/items/5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Pineapple")
}

func TestAPI_CreateItemValidation(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(mockItems...), catalog.HTTPDeps{})

	tests := []struct {
		body  string
		field string
	}{
		{`{}`, "name"},
		{`{"name": ""}`, "name"},
		{`{"name": "   "}`, "name"},
		{`{"name": 123}`, "name"},
		{`{"name": "", "category": "Fruit", "price": 5}`, "name"},
		{`{"name": "Pear", "price": 20}`, "category"},
		{`{"name": "Pear", "category": "", "price": 20}`, "category"},
		{`{"name": "Pear", "category": 123, "price": 20}`, "category"},
		{`{"name": "Pear", "category": "Fruit"}`, "price"},
		{`{"name": "Pear", "category": "Fruit", "price": -5}`, "price"},
		{`{"name": "Pear", "category": "Fruit", "price": "abc"}`, "price"},
	}

	for _, tt := range tests {
		resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/items", tt.body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "body=%s", tt.body)

		var er struct {
			Error   string         `json:"error"`
			Details map[string]any `json:"details"`
		}
		require.NoError(t, json.Unmarshal(raw, &er))
		assert.Equal(t, tt.field, er.Details["field"], "body=%s", tt.body)
		assert.Contains(t, er.Error, tt.field)
	}
}

func TestAPI_CreateItemBadJSON(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(), catalog.HTTPDeps{})

	for _, body := range []string{
		`{"name":`,
		`{"name":"a","category":"b","price":1,"id":7}`,
		`{"name":"a","category":"b","price":1}{}`,
	} {
		resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/items", body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "body=%s", body)
		assert.Contains(t, string(raw), "bad json")
	}
}

func TestAPI_StorageFailuresAreGeneric500(t *testing.T) {
	ts := newCatalogTS(t, failingStore{}, catalog.HTTPDeps{})

	checks := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/items", nil},
		{http.MethodGet, "/api/items/1", nil},
		{http.MethodPost, "/api/items", map[string]any{"name": "Pear", "category": "Fruit", "price": 20}},
		{http.MethodGet, "/api/stats", nil},
	}
	for _, c := range checks {
		resp, raw := doJSON(t, c.method, ts.URL+c.path, c.body)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode, "%s %s", c.method, c.path)
		assert.Contains(t, string(raw), "server error")
		assert.NotContains(t, string(raw), "read error")
	}

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_Stats(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(mockItems[:3]...), catalog.HTTPDeps{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total":3,"averagePrice":20}`, string(raw))
}

func TestAPI_StatsEmptyCatalog(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(), catalog.HTTPDeps{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/api/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total":0,"averagePrice":null}`, string(raw))
}

func TestAPI_MiscRoutes(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(), catalog.HTTPDeps{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"OK","message":"Server is running"}`, string(raw))

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/favicon.ico", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "route not found")
}

func TestAPI_CORS(t *testing.T) {
	ts := newCatalogTS(t, catalog.NewMemStore(), catalog.HTTPDeps{
		CORSOrigins: []string{"http://localhost:3000"},
	})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/items", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newCatalogTS(t, catalog.NewMemStore(mockItems...), catalog.HTTPDeps{
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "s3cret",
	})

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `http_requests_total{method="GET",path="/api/items",service="catalog",status="200"} 1`)
}

func TestAPI_CreateRateLimited(t *testing.T) {
	svc := catalog.NewService(catalog.NewMemStore(), nil, zap.NewNop())
	s := &catalog.Server{
		Service:       svc,
		CreateLimiter: kit.NewIPRateLimiter(2, time.Minute),
	}
	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{}))
	t.Cleanup(ts.Close)

	body := map[string]any{"name": "Pear", "category": "Fruit", "price": 1}
	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/items", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/items", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/items", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
