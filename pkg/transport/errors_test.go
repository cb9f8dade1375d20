package transport

import (
	"errors"
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		contains []string
	}{
		{
			name: "status error",
			err: &APIError{
				StatusCode: 400,
				ErrorClass: ErrorClassClient,
				Message:    "Invalid parameter: ids",
			},
			contains: []string{"client", "400", "Invalid parameter: ids"},
		},
		{
			name: "wrapped transport error",
			err: &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			contains: []string{"network", "request failed", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is did not reach the wrapped error")
	}

	var apiErr *APIError
	if !errors.As(error(err), &apiErr) {
		t.Error("errors.As failed to match *APIError")
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		want       bool
	}{
		{"server errors retried", ErrorClassServer, true},
		{"rate limits retried", ErrorClassRateLimit, true},
		{"network errors retried", ErrorClassNetwork, true},
		{"client errors not retried", ErrorClassClient, false},
		{"unknown class not retried", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.errorClass); got != tt.want {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, got, tt.want)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{400, ErrorClassClient},
		{401, ErrorClassClient},
		{403, ErrorClassClient},
		{404, ErrorClassClient},
		{500, ErrorClassServer},
		{502, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	apiErr := &APIError{StatusCode: 503, ErrorClass: ErrorClassServer, Message: "Backend Error"}
	if got := classifyError(apiErr); got != ErrorClassServer {
		t.Errorf("classifyError(APIError) = %q, want %q", got, ErrorClassServer)
	}

	if got := classifyError(errors.New("dial tcp: timeout")); got != ErrorClassNetwork {
		t.Errorf("classifyError(plain error) = %q, want %q", got, ErrorClassNetwork)
	}
}
