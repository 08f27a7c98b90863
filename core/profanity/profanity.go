// Package profanity censors words from a configured list. Matching ignores
// case and diacritics, so "Fück" matches "fuck".
package profanity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Result of a check.
type Result struct {
	HasProfanity bool   `json:"hasProfanity"`
	CensoredText string `json:"censoredText"`
}

type Checker struct {
	words map[string]struct{}
}

func New(words []string) *Checker {
	c := &Checker{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w = fold(strings.TrimSpace(w)); w != "" {
			c.words[w] = struct{}{}
		}
	}
	return c
}

// Check text, masking every listed word with asterisks.
func (c *Checker) Check(text string) Result {
	var (
		out   strings.Builder
		word  []rune
		found bool
	)
	flush := func() {
		if len(word) == 0 {
			return
		}
		if _, bad := c.words[fold(string(word))]; bad {
			found = true
			out.WriteString(strings.Repeat("*", len(word)))
		} else {
			out.WriteString(string(word))
		}
		word = word[:0]
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			word = append(word, r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()
	return Result{HasProfanity: found, CensoredText: out.String()}
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
