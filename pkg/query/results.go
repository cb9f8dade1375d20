package query

import (
	"context"
	"strconv"
	"time"
)

// Results is the lazy row sequence produced by one report query. It follows
// the database/sql.Rows iteration idiom:
//
//	for results.Next() {
//		row := results.Row()
//		...
//	}
//	if err := results.Err(); err != nil {
//		...
//	}
//
// Rows come back in API order, page order preserved. Iteration is
// single-pass and not safe for concurrent use; each Results owns its cursor
// state exclusively.
type Results struct {
	ctx     context.Context
	fetcher *pageFetcher

	// Parameters of the first physical call. Continuation calls inherit
	// them with the next-link overrides merged on top.
	params Params

	kind     string
	total    int
	cap      int // 0 = unbounded
	pageSize int

	startDate time.Time
	endDate   time.Time

	page    *Page
	pos     int // next unread row within the current page
	yielded int // rows yielded across the whole query
	done    bool
	cur     Row
	err     error
}

func newResults(ctx context.Context, fetcher *pageFetcher, params Params, first *Page, spec Spec, pageSize int) *Results {
	return &Results{
		ctx:       ctx,
		fetcher:   fetcher,
		params:    params,
		kind:      first.Kind,
		total:     first.TotalResults,
		cap:       spec.MaxResults,
		pageSize:  pageSize,
		startDate: spec.StartDate,
		endDate:   spec.EndDate,
		page:      first,
	}
}

// Kind returns the result kind tag, echoed verbatim from the first page.
func (r *Results) Kind() string {
	return r.kind
}

// Len returns the number of rows the sequence will yield on full iteration:
// the total declared by the API, bounded by the row cap when one was set.
func (r *Results) Len() int {
	if r.cap > 0 && r.cap < r.total {
		return r.cap
	}
	return r.total
}

// Next advances to the next row, fetching the next page when the current one
// is exhausted. It returns false when the sequence ends or a continuation
// fetch fails; consult Err to tell the two apart. Rows already yielded stay
// valid either way.
func (r *Results) Next() bool {
	if r.done || r.err != nil {
		return false
	}

	for {
		if r.cap > 0 && r.yielded >= r.cap {
			r.done = true
			return false
		}

		if r.pos < len(r.page.Rows) {
			r.cur = buildRow(r.page.ColumnHeaders, r.page.Rows[r.pos], r.startDate, r.endDate)
			r.pos++
			r.yielded++
			gaRowsYieldedTotal.Inc()
			return true
		}

		// A page declaring zero total results carries nothing worth
		// following, even if a continuation link is present.
		if r.page.TotalResults == 0 || r.page.NextLink == "" {
			r.done = true
			return false
		}

		overrides := parseNextLink(r.page.NextLink)
		if len(overrides) == 0 {
			// Unparsable continuation: treat the page as terminal
			// rather than corrupt the rows already yielded.
			r.fetcher.logger.Warn().
				Str("next_link", r.page.NextLink).
				Msg("Unparsable continuation link, ending iteration")
			r.done = true
			return false
		}

		next := r.params.merge(overrides)
		if r.cap > 0 {
			// Never ask for more rows than the budget still allows.
			clamp := r.pageSize
			if remaining := r.cap - r.yielded; remaining < clamp {
				clamp = remaining
			}
			next[ParamMaxResults] = strconv.Itoa(clamp)
		}

		page, err := r.fetcher.fetch(r.ctx, next)
		if err != nil {
			r.err = err
			r.done = true
			return false
		}
		gaPagesFetchedTotal.WithLabelValues("continuation").Inc()

		r.page = page
		r.pos = 0
	}
}

// Row returns the row Next advanced to. It is only valid after Next has
// returned true.
func (r *Results) Row() Row {
	return r.cur
}

// Err returns the error that ended iteration early, if any.
func (r *Results) Err() error {
	return r.err
}
