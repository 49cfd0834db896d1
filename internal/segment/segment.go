// Package segment splits raw text into sentence-bounded, token-budgeted
// chunks for embedding.
package segment

import (
	"strings"
	"unicode"
)

// Segment greedily packs whole sentences into chunks of at most
// targetTokens whitespace-delimited tokens. The budget is a soft
// threshold: a single sentence longer than targetTokens is emitted whole
// rather than truncated.
func Segment(text string, targetTokens int) []string {
	if targetTokens <= 0 {
		targetTokens = 1
	}

	var chunks []string
	var buf []string
	bufTokens := 0

	for _, sentence := range SplitSentences(text) {
		n := len(strings.Fields(sentence))
		if n == 0 {
			continue
		}
		if bufTokens > 0 && bufTokens+n > targetTokens {
			chunks = append(chunks, strings.Join(buf, " "))
			buf = buf[:0]
			bufTokens = 0
		}
		buf = append(buf, sentence)
		bufTokens += n
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, " "))
	}
	return chunks
}

// SplitSentences cuts text at '.', '!' or '?' followed by whitespace or
// end of input. Sentences are trimmed; empty ones are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
