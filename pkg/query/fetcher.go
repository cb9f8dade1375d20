package query

import (
	"context"

	"github.com/rs/zerolog"
)

// Transport executes exactly one physical API call. Implementations are
// stateless with respect to the query engine and may be called any number of
// times. The concrete HTTP transport lives in pkg/transport; tests inject
// fakes.
type Transport interface {
	Execute(ctx context.Context, params Params) (*Page, error)
}

// Hook observes the exact parameter map of every physical call just before
// it is sent. It is invoked synchronously and must not modify the map.
type Hook func(params Params)

// pageFetcher issues single page fetches through the injected transport,
// invoking the observation hook first when one is configured. Transport
// failures are surfaced unchanged: no retry, no interpretation.
type pageFetcher struct {
	transport Transport
	hook      Hook
	logger    zerolog.Logger
}

func (f *pageFetcher) fetch(ctx context.Context, params Params) (*Page, error) {
	if f.hook != nil {
		f.hook(params)
	}

	f.logger.Debug().
		Str("ids", params[ParamIDs]).
		Str("start_index", params[ParamStartIndex]).
		Msg("Fetching result page")

	page, err := f.transport.Execute(ctx, params)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Int("rows", len(page.Rows)).
		Int("total_results", page.TotalResults).
		Bool("has_next", page.NextLink != "").
		Msg("Result page received")

	return page, nil
}
