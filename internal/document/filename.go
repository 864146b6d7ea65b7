package document

import (
	"strings"
	"unicode"
)

// Label returns the localized document label used in file names.
func (v *View) Label() string {
	switch {
	case v.Kind == KindQuote && v.German():
		return "angebot"
	case v.Kind == KindQuote:
		return "quote"
	case v.German():
		return "rechnung"
	default:
		return "invoice"
	}
}

// FileName returns the lowercase artifact name
// {number}_{label}_{company}.{ext}. The company part is omitted when the
// business has no name.
func FileName(v *View, ext string) string {
	parts := []string{sanitize(v.Number), v.Label()}
	if company := sanitize(v.Business.Name); company != "" {
		parts = append(parts, company)
	}
	return strings.ToLower(strings.Join(parts, "_") + "." + strings.TrimPrefix(ext, "."))
}

// sanitize joins whitespace-separated words with dashes and drops path
// separators.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), "-")
}
