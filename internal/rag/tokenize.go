package rag

import (
	"strings"
	"unicode"
)

// stopwords are dropped before lexical matching. The set covers common
// English filler plus the generic words this system's users put in
// aggregate questions ("show me the data").
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "all": {}, "an": {}, "and": {}, "any": {},
	"are": {}, "as": {}, "at": {}, "be": {}, "by": {}, "can": {},
	"could": {}, "data": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"get": {}, "give": {}, "has": {}, "have": {}, "how": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "list": {}, "me": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "please": {}, "show": {}, "tell": {},
	"that": {}, "the": {}, "their": {}, "there": {}, "this": {}, "to": {},
	"us": {}, "was": {}, "we": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "why": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {},
}

// Tokenize lower-cases the question, strips everything but alphanumerics
// and '(', ')', '.', '-', and drops stopwords and tokens shorter than two
// characters. The result may be empty.
func Tokenize(question string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(question) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '(' || r == ')' || r == '.' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) < 2 {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
