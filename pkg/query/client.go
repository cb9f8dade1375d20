package query

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for query engine operations.
var (
	gaQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ga_queries_total",
		Help: "Total logical report queries started",
	})

	gaPagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ga_pages_fetched_total",
		Help: "Total physical result pages fetched by kind (first, continuation)",
	}, []string{"kind"})

	gaRowsYieldedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ga_rows_yielded_total",
		Help: "Total result rows yielded to consumers",
	})
)

// DefaultPageSize is the protocol default number of rows per result page.
// Continuation requests never ask for more rows than this unless configured
// otherwise via WithPageSize.
const DefaultPageSize = 1000

// Client executes report queries against the Core Reporting API through an
// injected Transport. Independent Results values share nothing but the
// client's configuration, so a single Client is safe for concurrent use.
type Client struct {
	transport Transport
	hook      Hook
	pageSize  int
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHook installs an observation hook invoked with the final parameter map
// before every physical call. Useful for request logging and auditing
// without altering behavior.
func WithHook(hook Hook) Option {
	return func(c *Client) {
		c.hook = hook
	}
}

// WithPageSize sets the per-page row clamp used when a row budget must be
// spread across continuation requests. The API never returns more than the
// protocol default per page, so values above DefaultPageSize only change
// what is asked for, not what is returned.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a query client using the given transport.
func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		pageSize:  DefaultPageSize,
		logger:    log.With().Str("component", "ga-query").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get executes the query described by spec and returns its lazy result
// sequence. The first page is fetched eagerly, so configuration and
// transport errors for the initial call surface here; continuation fetch
// errors surface from Results.Err during iteration.
//
// The supplied context is retained by the returned Results and governs all
// continuation fetches.
func (c *Client) Get(ctx context.Context, spec Spec) (*Results, error) {
	params, err := buildParams(spec)
	if err != nil {
		return nil, err
	}

	gaQueriesTotal.Inc()

	fetcher := &pageFetcher{
		transport: c.transport,
		hook:      c.hook,
		logger:    c.logger,
	}

	page, err := fetcher.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	gaPagesFetchedTotal.WithLabelValues("first").Inc()

	return newResults(ctx, fetcher, params, page, spec, c.pageSize), nil
}
