// Package textnorm provides the lexical normalizer shared by every matching component.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// shortKeywordLen is the rune length at or below which keywords only match whole words.
const shortKeywordLen = 3

var integerPattern = regexp.MustCompile(`\b(\d+)\b`)

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lower-cases text, strips diacritics, replaces every rune that is
// neither a letter, a digit nor whitespace with a space and collapses runs of
// whitespace. It never fails; empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = stripMarks(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Words returns the normalized tokens of text in order, duplicates included.
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}

// Tokenize returns the set of normalized tokens of text.
func Tokenize(text string) map[string]struct{} {
	words := Words(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DatasetText folds a catalog field for containment checks: lower-case with
// '-' and '_' turned into spaces.
func DatasetText(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// HasPhrase reports whether phrase occurs in text on word boundaries. Both
// arguments are expected to be normalized.
func HasPhrase(text, phrase string) bool {
	if phrase == "" || text == "" {
		return false
	}
	padded := " " + text + " "
	return strings.Contains(padded, " "+phrase+" ")
}

// ContainsKeyword reports whether kw occurs in text. Keywords of up to three
// runes must match whole words so that "sun" does not fire on "sunscreen";
// longer keywords match as substrings, which tolerates Indonesian suffixes
// such as "kusamnya".
func ContainsKeyword(text, kw string) bool {
	if kw == "" {
		return false
	}
	if utf8.RuneCountInString(kw) <= shortKeywordLen {
		return HasPhrase(text, kw)
	}
	return strings.Contains(text, kw)
}

// ContainsAny reports whether any of the keywords occurs in text.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if ContainsKeyword(text, kw) {
			return true
		}
	}
	return false
}

// FirstInt returns the first standalone integer literal in text.
func FirstInt(text string) (int, bool) {
	m := integerPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n := 0
	for _, r := range m[1] {
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			return n, true
		}
	}
	return n, true
}
