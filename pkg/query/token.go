package query

import "strings"

// TokenPrefix is the namespace prefix the Core Reporting API requires on
// profile ids, metric, dimension, filter and sort tokens.
const TokenPrefix = "ga:"

// descMarker marks a sort token as descending. It stays in front of the
// namespace prefix on the wire ("-ga:visits").
const descMarker = "-"

// Prefix returns the token with the ga: namespace prefix applied exactly
// once. Tokens that already carry the prefix are returned unchanged, so the
// operation is idempotent.
func Prefix(token string) string {
	if strings.HasPrefix(token, TokenPrefix) {
		return token
	}
	return TokenPrefix + token
}

// prefixJoin normalizes each token and joins them with commas, preserving
// input order.
func prefixJoin(tokens []string) string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Prefix(t)
	}
	return strings.Join(out, ",")
}

// prefixSort normalizes a sort token. A leading descending marker is kept in
// front of the inserted prefix.
func prefixSort(token string) string {
	if strings.HasPrefix(token, descMarker) {
		return descMarker + Prefix(token[len(descMarker):])
	}
	return Prefix(token)
}

// prefixSortJoin normalizes each sort token and joins them with commas.
func prefixSortJoin(tokens []string) string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = prefixSort(t)
	}
	return strings.Join(out, ",")
}
