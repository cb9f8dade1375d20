package transport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/analytics-tools/ga-reporting-client/internal/testutil"
	"github.com/analytics-tools/ga-reporting-client/pkg/query"
)

func newTestClient(t *testing.T, mock *testutil.MockAnalytics) *Client {
	t.Helper()
	c, err := New(Config{
		HTTPClient: http.DefaultClient,
		BaseURL:    mock.URL(),
		UserAgent:  "ga-reporting-client-test/1.0",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing http client",
			cfg:     Config{UserAgent: "test/1.0"},
			wantErr: true,
		},
		{
			name:    "missing user agent",
			cfg:     Config{HTTPClient: http.DefaultClient},
			wantErr: true,
		},
		{
			name:    "valid config",
			cfg:     Config{HTTPClient: http.DefaultClient, UserAgent: "test/1.0"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c, err := New(Config{HTTPClient: http.DefaultClient, UserAgent: "test/1.0"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}

func TestExecute_DecodesPage(t *testing.T) {
	mock := testutil.NewMockAnalytics()
	defer mock.Close()

	mock.SetDataPages(testutil.PageFixture{
		TotalResults: 2,
		Dimensions:   []string{"date"},
		Metrics:      []string{"visits"},
		Rows: [][]string{
			{"20121110", "8083"},
			{"20121111", "7643"},
		},
		NextLink: "https://www.googleapis.com/analytics/v3/data/ga?start-index=1001",
	}.JSON())

	c := newTestClient(t, mock)

	page, err := c.Execute(context.Background(), query.Params{
		query.ParamIDs:       "ga:12345",
		query.ParamStartDate: "2012-11-10",
		query.ParamEndDate:   "2012-11-11",
		query.ParamMetrics:   "ga:visits",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if page.Kind != "analytics#gaData" {
		t.Errorf("Kind = %q, want %q", page.Kind, "analytics#gaData")
	}
	if page.TotalResults != 2 {
		t.Errorf("TotalResults = %d, want 2", page.TotalResults)
	}
	if len(page.ColumnHeaders) != 2 {
		t.Fatalf("got %d column headers, want 2", len(page.ColumnHeaders))
	}
	if page.ColumnHeaders[0].Name != "ga:date" || page.ColumnHeaders[0].ColumnType != query.ColumnTypeDimension {
		t.Errorf("first header = %+v, want ga:date DIMENSION", page.ColumnHeaders[0])
	}
	if len(page.Rows) != 2 || page.Rows[0][1] != "8083" {
		t.Errorf("rows decoded incorrectly: %v", page.Rows)
	}
	if page.NextLink == "" {
		t.Error("NextLink was dropped in decoding")
	}
}

func TestExecute_WireKeysDashed(t *testing.T) {
	mock := testutil.NewMockAnalytics()
	defer mock.Close()
	mock.SetDataPages(testutil.PageFixture{TotalResults: 0, Metrics: []string{"visits"}}.JSON())

	c := newTestClient(t, mock)

	_, err := c.Execute(context.Background(), query.Params{
		query.ParamIDs:        "ga:12345",
		query.ParamStartDate:  "2012-01-01",
		query.ParamEndDate:    "2012-01-02",
		query.ParamMetrics:    "ga:visits",
		query.ParamStartIndex: "1001",
		query.ParamMaxResults: "1000",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	sent := mock.Query(0)
	tests := []struct {
		wire string
		want string
	}{
		{"ids", "ga:12345"},
		{"start-date", "2012-01-01"},
		{"end-date", "2012-01-02"},
		{"metrics", "ga:visits"},
		{"start-index", "1001"},
		{"max-results", "1000"},
	}
	for _, tt := range tests {
		if sent.Get(tt.wire) != tt.want {
			t.Errorf("wire param %q = %q, want %q", tt.wire, sent.Get(tt.wire), tt.want)
		}
	}
	for _, underscored := range []string{"start_date", "end_date", "start_index", "max_results"} {
		if sent.Has(underscored) {
			t.Errorf("underscored key %q leaked onto the wire", underscored)
		}
	}
}

func TestExecute_ClientErrorNotRetried(t *testing.T) {
	mock := testutil.NewMockAnalytics()
	defer mock.Close()
	mock.SetJSONResponse(testutil.DataPath, http.StatusBadRequest,
		testutil.NewErrorResponse(400, "Invalid parameter: ids"))

	c := newTestClient(t, mock)

	_, err := c.Execute(context.Background(), query.Params{query.ParamIDs: "ga:12345"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.ErrorClass != ErrorClassClient {
		t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, ErrorClassClient)
	}
	if apiErr.Message != "Invalid parameter: ids" {
		t.Errorf("Message = %q, want error envelope message", apiErr.Message)
	}

	if mock.GetRequestCount() != 1 {
		t.Errorf("request count = %d, want 1 (client errors are not retried)", mock.GetRequestCount())
	}
}

func TestExecute_ServerErrorRetriedToSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping retry timing test in short mode")
	}

	mock := testutil.NewMockAnalytics()
	defer mock.Close()

	page := testutil.PageFixture{
		TotalResults: 1,
		Metrics:      []string{"visits"},
		Rows:         [][]string{{"42"}},
	}.JSON()

	calls := 0
	mock.SetHandler(testutil.DataPath, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(testutil.NewErrorResponse(503, "Backend Error")))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(page))
	})

	c := newTestClient(t, mock)

	result, err := c.Execute(context.Background(), query.Params{query.ParamIDs: "ga:12345"})
	if err != nil {
		t.Fatalf("Execute failed after retries: %v", err)
	}
	if result.TotalResults != 1 {
		t.Errorf("TotalResults = %d, want 1", result.TotalResults)
	}
	if mock.GetRequestCount() != 3 {
		t.Errorf("request count = %d, want 3 (two failures then success)", mock.GetRequestCount())
	}
}

func TestGetJSON_PlainStatusWithoutEnvelope(t *testing.T) {
	mock := testutil.NewMockAnalytics()
	defer mock.Close()
	mock.SetJSONResponse(testutil.DataPath, http.StatusForbidden, "insufficient permissions")

	c := newTestClient(t, mock)

	var out map[string]any
	err := c.GetJSON(context.Background(), testutil.DataPath, nil, &out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	// No envelope in the body, so the message falls back to the HTTP status.
	if apiErr.Message == "" {
		t.Error("Message is empty, want HTTP status fallback")
	}
}

func TestGetJSON_MalformedBody(t *testing.T) {
	mock := testutil.NewMockAnalytics()
	defer mock.Close()
	mock.SetJSONResponse(testutil.DataPath, http.StatusOK, "{not json")

	c := newTestClient(t, mock)

	var out map[string]any
	if err := c.GetJSON(context.Background(), testutil.DataPath, nil, &out); err == nil {
		t.Error("Expected decode error, got nil")
	}
}
