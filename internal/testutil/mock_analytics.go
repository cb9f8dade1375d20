// Package testutil provides testing utilities for the Analytics client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// DataPath is the report query endpoint path under the API base URL.
const DataPath = "/data/ga"

// MockAnalytics is a configurable mock Analytics API server for testing.
type MockAnalytics struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	Requests     []*http.Request
	Queries      []url.Values
}

// NewMockAnalytics creates a new mock Analytics API server.
func NewMockAnalytics() *MockAnalytics {
	mock := &MockAnalytics{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, r.Clone(r.Context()))
		mock.Queries = append(mock.Queries, r.URL.Query())
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL, usable as the transport base URL.
func (m *MockAnalytics) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAnalytics) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockAnalytics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.Queries = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAnalytics) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// Query returns the query parameters of the i-th request (0-based).
func (m *MockAnalytics) Query(i int) url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.Queries) {
		return nil
	}
	return m.Queries[i]
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAnalytics) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetJSONResponse configures a fixed JSON response for a path.
func (m *MockAnalytics) SetJSONResponse(path string, statusCode int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	})
}

// SetDataPages serves the given page bodies from the data endpoint in order,
// one per request. Requests beyond the last page repeat the last page.
func (m *MockAnalytics) SetDataPages(pages ...string) {
	var mu sync.Mutex
	call := 0
	m.SetHandler(DataPath, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		page := pages[min(call, len(pages)-1)]
		call++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, page)
	})
}

// PageFixture describes one gaData result page for fixture construction.
type PageFixture struct {
	Kind         string
	TotalResults int
	Metrics      []string   // column header names, METRIC type
	Dimensions   []string   // column header names, DIMENSION type, listed first
	Rows         [][]string // dimension values then metric values, per header order
	NextLink     string
}

// JSON renders the fixture as a gaData response body. Column headers list
// dimensions before metrics, matching the API's column ordering.
func (p PageFixture) JSON() string {
	kind := p.Kind
	if kind == "" {
		kind = "analytics#gaData"
	}

	type header struct {
		Name       string `json:"name"`
		ColumnType string `json:"columnType"`
		DataType   string `json:"dataType"`
	}

	headers := make([]header, 0, len(p.Dimensions)+len(p.Metrics))
	for _, name := range p.Dimensions {
		headers = append(headers, header{Name: "ga:" + name, ColumnType: "DIMENSION", DataType: "STRING"})
	}
	for _, name := range p.Metrics {
		headers = append(headers, header{Name: "ga:" + name, ColumnType: "METRIC", DataType: "INTEGER"})
	}

	body := map[string]any{
		"kind":          kind,
		"totalResults":  p.TotalResults,
		"columnHeaders": headers,
		"rows":          p.Rows,
	}
	if p.NextLink != "" {
		body["nextLink"] = p.NextLink
	}

	data, err := json.Marshal(body)
	if err != nil {
		panic(err) // fixture construction only, inputs are test constants
	}
	return string(data)
}

// NewErrorResponse renders the Google API error envelope for a failure body.
func NewErrorResponse(code int, message string) string {
	return fmt.Sprintf(`{"error": {"code": %d, "message": %q}}`, code, message)
}
