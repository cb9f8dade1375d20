package query

import (
	"strconv"
	"time"
)

// Logical parameter keys used on every request. The transport translates
// them to the dashed wire form (start_date -> start-date) when building the
// request URL.
const (
	ParamIDs        = "ids"
	ParamStartDate  = "start_date"
	ParamEndDate    = "end_date"
	ParamMetrics    = "metrics"
	ParamDimensions = "dimensions"
	ParamFilters    = "filters"
	ParamSort       = "sort"
	ParamSegment    = "segment"
	ParamMaxResults = "max_results"
	ParamStartIndex = "start_index"
)

// dateFormat is the calendar date layout the API expects.
const dateFormat = "2006-01-02"

// Params is the flat parameter map sent with one physical API call.
type Params map[string]string

// clone returns a copy of the parameter map. Each physical call gets its own
// map so continuation overrides never mutate the original request.
func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// merge returns a copy of p with the override entries applied on top.
// Overrides replace same-named keys; everything else is inherited.
func (p Params) merge(overrides Params) Params {
	out := p.clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Spec describes one logical report query. Multi-valued fields preserve
// input order; ordering is significant for comma-joined wire values and for
// sort precedence.
type Spec struct {
	// IDs are the profile ids to query. At least one is required.
	IDs []string

	// StartDate and EndDate bound the reporting period (calendar dates,
	// time-of-day is ignored).
	StartDate time.Time
	EndDate   time.Time

	// Metrics are the measures to report. At least one is required.
	Metrics []string

	// Dimensions are optional categorical attributes to break metrics down by.
	Dimensions []string

	// Filters are optional filter clauses in the API's filter expression
	// grammar (";" joins clauses with AND, "|" with OR).
	Filters []string

	// Sort lists sort keys in precedence order. A leading "-" marks a key
	// as descending.
	Sort []string

	// Segment is an opaque sub-population expression. It is passed through
	// without namespace prefixing: segment addressing ("gaid::..." and
	// "dynamic::..." forms) has its own scheme.
	Segment string

	// MaxResults caps the total number of rows the query yields, across all
	// pages. Zero means unbounded.
	MaxResults int
}

// buildParams converts a Spec into the parameter map for the first physical
// call. It performs no I/O; configuration errors surface here, before any
// request is issued.
func buildParams(spec Spec) (Params, error) {
	if len(spec.IDs) == 0 {
		return nil, ErrNoIDs
	}
	if len(spec.Metrics) == 0 {
		return nil, ErrNoMetrics
	}
	if spec.StartDate.IsZero() || spec.EndDate.IsZero() {
		return nil, ErrNoDateRange
	}
	if spec.MaxResults < 0 {
		return nil, ErrNegativeMaxResults
	}

	params := Params{
		ParamIDs:       prefixJoin(spec.IDs),
		ParamStartDate: spec.StartDate.Format(dateFormat),
		ParamEndDate:   spec.EndDate.Format(dateFormat),
		ParamMetrics:   prefixJoin(spec.Metrics),
	}

	// Optional fields are omitted entirely rather than sent empty.
	if len(spec.Dimensions) > 0 {
		params[ParamDimensions] = prefixJoin(spec.Dimensions)
	}
	if len(spec.Filters) > 0 {
		params[ParamFilters] = prefixJoin(spec.Filters)
	}
	if len(spec.Sort) > 0 {
		params[ParamSort] = prefixSortJoin(spec.Sort)
	}
	if spec.Segment != "" {
		params[ParamSegment] = spec.Segment
	}
	if spec.MaxResults > 0 {
		params[ParamMaxResults] = strconv.Itoa(spec.MaxResults)
	}

	return params, nil
}
