// internal/workers/headline/normalize-input/clean.go
package normalizeinput

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	entitySpacePattern = regexp.MustCompile(`(?i)&(?:nbsp|ensp|emsp|thinsp|#160|#x0*a0|#32|#x0*20|#9|#x0*9|#10|#x0*a|#13|#x0*d);`)
	spacePattern       = regexp.MustCompile(`[\s\p{Zs}]+`)

	// An instruction to the system that precedes the actual post, e.g.
	// "Generate a headline for this post: ...". The colon is required.
	instructionPrefix = regexp.MustCompile(`(?i)^[^:]*?\b(?:generate|create|write|give|suggest|make|craft)\b[^:]*?\bposts?\s*:`)
)

// Clean strips markup and whitespace noise, then drops any leading
// instruction prefix. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = entitySpacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))

	for {
		loc := instructionPrefix.FindStringIndex(s)
		if loc == nil {
			return s
		}
		s = strings.TrimSpace(s[loc[1]:])
	}
}

// ExtractTopic returns the first sentence of text, capped at limit runes,
// without trailing punctuation or emoji. When no usable sentence remains it
// falls back to a prefix of text.
func ExtractTopic(text string, limit int) string {
	if limit <= 0 {
		limit = 100
	}

	if topic := trimTopicTail(capRunes(firstSentence(text), limit)); topic != "" {
		return topic
	}
	if topic := trimTopicTail(capRunes(text, limit)); topic != "" {
		return topic
	}
	return strings.TrimSpace(truncateRunes(text, limit))
}

func firstSentence(text string) string {
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next == len(text) {
			return text
		}
		nr, _ := utf8.DecodeRuneInString(text[next:])
		if unicode.IsSpace(nr) {
			return text[:next]
		}
	}
	return text
}

// capRunes truncates to limit runes, backing off to a word boundary when one
// exists in the second half of the budget.
func capRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := truncateRunes(s, limit)
	if idx := strings.LastIndexByte(cut, ' '); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return cut
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

func trimTopicTail(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		switch {
		case r == '%':
			return false
		case r == '\u200d' || r == '\ufe0f':
			return true
		case unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			return true
		}
		return false
	})
}
