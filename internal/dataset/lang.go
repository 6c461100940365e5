// Package dataset loads the multilingual persona corpus and the self-play
// conversation starters.
package dataset

import "github.com/samcharles93/parley/internal/tokenizer"

// langNames maps language tag tokens to the corpus split names.
var langNames = map[string]string{
	"<en>": "En",
	"<fr>": "Fr",
	"<it>": "It",
	"<id>": "Id",
	"<jp>": "Jp",
	"<ko>": "Ko",
	"<zh>": "Zh",
}

// Languages returns the short language codes, in tag order (en, fr, ...).
func Languages() []string {
	codes := make([]string, 0, len(tokenizer.LangTags))
	for _, tag := range tokenizer.LangTags {
		codes = append(codes, tag[1:len(tag)-1])
	}
	return codes
}

// Tag converts a short code such as "en" to its tag token "<en>". The second
// result is false for unsupported codes.
func Tag(code string) (string, bool) {
	tag := "<" + code + ">"
	if _, ok := langNames[tag]; !ok {
		return "", false
	}
	return tag, true
}

// Name returns the corpus split name ("En", "Zh", ...) for a tag token.
func Name(tag string) (string, bool) {
	name, ok := langNames[tag]
	return name, ok
}

// IsCJK reports whether replies in this language are printed without
// inter-token spaces.
func IsCJK(tag string) bool {
	return tag == "<jp>" || tag == "<zh>"
}
