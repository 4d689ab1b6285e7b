package utils

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeString folds accented latin letters to their ASCII base letter ("ação" becomes
// "acao") so that titles render with the device's ASCII-only fonts. Characters without a
// decomposition are left alone.
func SanitizeString(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, str)
	if err != nil {
		return str
	}
	return out
}
