package query

import (
	"net/url"
	"strings"
)

// parseNextLink extracts the parameter overrides encoded in a page's
// continuation URL. The overrides are merged into the originating request's
// parameters for the next physical call; keys not present in the link are
// inherited unchanged.
//
// The query string is split by hand rather than with url.ParseQuery: the
// filter grammar uses a literal ";" as its AND separator inside a single
// value, and generic parsers treat ";" as a pair separator (or reject it
// outright). Values are percent-decoded individually, so an encoded "%7C"
// comes back as a literal "|" and an embedded ";" survives as itself.
//
// Dashed wire keys are translated to the underscored convention used by
// Params (start-index -> start_index, max-results -> max_results). Unknown
// keys pass through. A URL without a query string yields an empty map, as
// does one that cannot be decoded: a broken continuation makes the current
// page terminal, it never fails the rows already yielded.
func parseNextLink(link string) Params {
	_, rawQuery, found := strings.Cut(link, "?")
	if !found {
		return Params{}
	}

	overrides := make(Params)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, rawValue, _ := strings.Cut(pair, "=")

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			// Undecodable value: drop the pair rather than propagate
			// a corrupted parameter.
			continue
		}

		overrides[strings.ReplaceAll(key, "-", "_")] = value
	}

	return overrides
}
