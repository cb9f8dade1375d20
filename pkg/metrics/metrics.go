// Package metrics provides the centralized Prometheus metrics registry for
// the Analytics client. All metrics are defined in their respective packages
// (query, transport, quota) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Analytics client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Query Engine Metrics (pkg/query):
//   - ga_queries_total (Counter): Logical report queries started
//   - ga_pages_fetched_total{kind} (Counter): Physical pages fetched (first, continuation)
//   - ga_rows_yielded_total (Counter): Rows yielded to consumers
//
// Transport Metrics (pkg/transport):
//   - ga_requests_total{path, status} (Counter): Requests by path and HTTP status
//   - ga_request_duration_seconds{path} (Histogram): Request duration by path
//   - ga_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//   - ga_retries_total{error_class} (Counter): Retry attempts by error class
//   - ga_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - ga_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Quota Metrics (pkg/quota):
//   - ga_quota_remaining (Gauge): Requests remaining in the daily quota window
//   - ga_quota_blocks_total (Counter): Requests blocked by exhausted quota
//
// Example Prometheus Queries:
//
//   # Pages per query (pagination depth)
//   rate(ga_pages_fetched_total[5m]) / rate(ga_queries_total[5m])
//
//   # Request Error Rate
//   rate(ga_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ga_request_duration_seconds_bucket[5m]))
//
//   # Quota headroom
//   ga_quota_remaining < 5000
