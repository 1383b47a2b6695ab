package metadata

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"boxstream/models"
)

// foldTitle reduces a title to a comparison key: transliterated to ASCII,
// case-folded, punctuation dropped, whitespace collapsed.
func foldTitle(title string) string {
	ascii := unidecode.Unidecode(title)
	folded := cases.Fold().String(ascii)
	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}

// searchQuery strips combining accents from a title before it is sent to
// the catalog. Non-Latin scripts are left intact.
func searchQuery(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, title)
	if err != nil {
		out = title
	}
	return strings.Join(strings.Fields(out), " ")
}

// SameTitle reports whether two titles fold to the same key.
func SameTitle(a, b string) bool {
	return foldTitle(a) == foldTitle(b)
}

func cacheKey(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(h[:])
}

func searchCacheKey(kind models.MediaKind, title string, year int) string {
	return cacheKey(string(kind), foldTitle(title), fmt.Sprint(year))
}
