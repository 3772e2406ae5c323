package search

import "strings"

// WildcardMarker is appended to every surviving token to request
// prefix-match semantics from the index.
const WildcardMarker = "*"

// Tokenize normalizes a raw query string into search tokens.
//
// The input is lower-cased and split on whitespace runs; every character
// outside [a-z0-9] is stripped from each piece, empty results are discarded,
// and each surviving token gets a trailing wildcard marker. A query that
// yields no tokens (blank or punctuation-only input) is the defined
// empty-match case, not an error.
//
// No stopword removal happens here; simplicity wins over recall suppression.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		var b strings.Builder
		for _, r := range field {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			continue
		}
		tokens = append(tokens, b.String()+WildcardMarker)
	}
	return tokens
}

// tsQueryFromTokens renders wildcarded tokens as a PostgreSQL tsquery string,
// joining them with logical AND: ["go*", "chan*"] -> "go:* & chan:*".
func tsQueryFromTokens(tokens []string) string {
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, strings.TrimSuffix(tok, WildcardMarker)+":*")
	}
	return strings.Join(terms, " & ")
}
