package util

import "strings"

// SanitizeText removes bytes and control characters that Postgres text columns
// reject (NUL in particular, which some PDF extractors emit). Newlines, carriage
// returns and tabs are kept.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch == '\n', ch == '\r', ch == '\t':
			b.WriteRune(ch)
		case ch < 0x20, ch == 0x7f:
			continue
		default:
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}
