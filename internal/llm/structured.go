package llm

import "strings"

// Models are asked for JSON but routinely wrap it in prose or code fences.
// These helpers cut out the widest bracket-delimited span so each call site
// only has to decode its own expected shape.

// FirstJSONArray returns the substring from the first '[' to the last ']'
// in s, and whether such a span exists.
func FirstJSONArray(s string) (string, bool) {
	return span(s, '[', ']')
}

// FirstJSONObject returns the substring from the first '{' to the last '}'
// in s, and whether such a span exists.
func FirstJSONObject(s string) (string, bool) {
	return span(s, '{', '}')
}

func span(s string, open, close byte) (string, bool) {
	i := strings.IndexByte(s, open)
	if i < 0 {
		return "", false
	}
	j := strings.LastIndexByte(s, close)
	if j <= i {
		return "", false
	}
	return s[i : j+1], true
}
