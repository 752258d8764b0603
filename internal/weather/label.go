package weather

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldLabel strips combining diacritical marks so the label renders with the
// limited glyph set of the panel font ("Čáslav" -> "Caslav"). On transform
// failure the input is returned unchanged.
func FoldLabel(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		return s
	}
	return out
}
