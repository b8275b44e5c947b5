// Package normalize provides utilities for normalizing catalog text and metadata.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes characters and strips combining marks, so
// "Éducation" folds to "Education". Transformers are stateless and safe
// to share.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritics. Used to build the shadow
// columns the local-first resolver matches against, so that "hugo"
// matches "Hugo" and "misérables" matches "Miserables".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the
		// original bytes rather than losing the row from search.
		folded = s
	}
	return strings.ToLower(folded)
}

// iso639_2to1 maps the 3-letter language codes OpenLibrary emits to the
// 2-letter codes the catalog stores. Only languages observed in source
// responses are listed; unknown codes pass through LanguageCode unchanged.
var iso639_2to1 = map[string]string{
	"eng": "en", "spa": "es", "fra": "fr", "fre": "fr", "deu": "de",
	"ger": "de", "ita": "it", "por": "pt", "nld": "nl", "dut": "nl",
	"rus": "ru", "jpn": "ja", "zho": "zh", "chi": "zh", "ara": "ar",
	"pol": "pl", "swe": "sv", "dan": "da", "fin": "fi", "tur": "tr",
	"ell": "el", "gre": "el", "ces": "cs", "cze": "cs", "hun": "hu",
	"ron": "ro", "rum": "ro", "ukr": "uk", "cat": "ca",
}

// LanguageCode normalizes a language identifier to a 2-letter code where
// a mapping is known. Already-short codes are lowercased and returned.
func LanguageCode(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	if code, ok := iso639_2to1[lang]; ok {
		return code
	}
	return lang
}

// Whitespace collapses runs of whitespace into single spaces and trims.
func Whitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
