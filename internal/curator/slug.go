package curator

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a title to a URL-safe slug: lowercase ASCII letters,
// digits, and hyphen separators with no leading or trailing hyphen.
// Deterministic: the same title always yields the same slug.
func Slugify(title string) string {
	slug := strings.ToLower(stripDiacritics(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// stripDiacritics maps accented letters to their ASCII base so titles in
// Spanish keep their letters instead of losing them.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var sb strings.Builder
	sb.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
