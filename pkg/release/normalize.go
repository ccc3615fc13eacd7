package release

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanNumeralRegex matches Roman numerals II-IX when preceded by a space.
// Standalone "I" and "X" are not converted ("I Am Bread", "Mega Man X").
var romanNumeralRegex = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanToArabic = map[string]string{
	"II": "2", "III": "3", "IV": "4", "V": "5",
	"VI": "6", "VII": "7", "VIII": "8", "IX": "9",
}

// trademarkMarks appear in catalog titles and never in file names.
var trademarkMarks = strings.NewReplacer("©", "", "®", "", "™", "")

// NormalizeRomanNumerals converts Roman numerals (II-IX) to Arabic numbers.
func NormalizeRomanNumerals(s string) string {
	return romanNumeralRegex.ReplaceAllStringFunc(s, func(match string) string {
		roman := strings.TrimSpace(match)
		if arabic, ok := romanToArabic[strings.ToUpper(roman)]; ok {
			return " " + arabic
		}
		return match
	})
}

// StripTrademarks removes copyright and trademark symbols and trims the result.
func StripTrademarks(title string) string {
	return strings.TrimSpace(trademarkMarks.Replace(title))
}

// CleanTitle normalizes a title for matching purposes.
// Lower-cases, removes accents and trademark symbols, converts Roman numerals,
// turns separators into spaces, strips leading articles and collapses whitespace.
func CleanTitle(title string) string {
	s := strings.ToLower(trademarkMarks.Replace(title))

	// Separators first so "Half-Life.II" reads as "half life ii"
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.NewReplacer("-", " ", ".", " ", "_", " ").Replace(s)

	s = NormalizeRomanNumerals(s)
	s = removeAccents(s)

	// Subtitles ("S.T.A.L.K.E.R. 2: Heart of Chornobyl") may carry their own article
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(collapseInitialisms(strings.Fields(b.String())), " ")
}

// collapseInitialisms joins runs of single-letter words so "s t a l k e r"
// compares equal to "stalker".
func collapseInitialisms(words []string) []string {
	out := make([]string, 0, len(words))
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			out = append(out, run.String())
			run.Reset()
		}
	}
	for _, w := range words {
		if r := []rune(w); len(r) == 1 && unicode.IsLetter(r[0]) {
			run.WriteString(w)
			continue
		}
		flush()
		out = append(out, w)
	}
	flush()
	return out
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
