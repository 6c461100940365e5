package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

const (
	unkToken     = "[UNK]"
	continuation = "##"
	// maxWordChars guards the WordPiece matcher against pathological input.
	maxWordChars = 100
)

// Tokenizer is a BERT-style WordPiece tokenizer over a fixed vocabulary.
// Token ids are line indices into vocab.txt.
type Tokenizer struct {
	tokens    []string
	ids       map[string]int
	unkID     int
	lowercase bool
}

// Load reads a vocab.txt file (one token per line) and returns a tokenizer.
// The vocabulary must contain the [UNK] token.
func Load(path string, lowercase bool) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer func() { _ = f.Close() }()

	t := &Tokenizer{
		ids:       make(map[string]int),
		unkID:     -1,
		lowercase: lowercase,
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tok := strings.TrimRight(scanner.Text(), "\r\n")
		id := len(t.tokens)
		t.tokens = append(t.tokens, tok)
		if _, dup := t.ids[tok]; !dup {
			t.ids[tok] = id
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	if len(t.tokens) == 0 {
		return nil, fmt.Errorf("vocab %s is empty", path)
	}
	unk, ok := t.ids[unkToken]
	if !ok {
		return nil, fmt.Errorf("vocab %s is missing %s", path, unkToken)
	}
	t.unkID = unk
	return t, nil
}

// VocabSize returns the number of entries in the vocabulary.
func (t *Tokenizer) VocabSize() int { return len(t.tokens) }

// TokenID returns the id for an exact token string, or -1 when absent.
func (t *Tokenizer) TokenID(tok string) int {
	if id, ok := t.ids[tok]; ok {
		return id
	}
	return -1
}

// TokenString returns the vocabulary entry for id, or "" when out of range.
func (t *Tokenizer) TokenString(id int) string {
	if id < 0 || id >= len(t.tokens) {
		return ""
	}
	return t.tokens[id]
}

// Encode tokenizes text into vocabulary ids: basic tokenization (whitespace,
// punctuation and CJK splitting, optional lowercasing) followed by greedy
// longest-match WordPiece with ## continuations and [UNK] fallback.
func (t *Tokenizer) Encode(text string) []int {
	words := basicTokenize(text, t.lowercase)
	ids := make([]int, 0, len(words))
	for _, w := range words {
		ids = append(ids, t.wordpiece(w)...)
	}
	return ids
}

// Decode renders ids back to text, dropping any id for which skip returns
// true (typically special tokens) and rejoining ## continuations.
func (t *Tokenizer) Decode(ids []int, skip func(int) bool) string {
	var b strings.Builder
	first := true
	for _, id := range ids {
		if id < 0 || id >= len(t.tokens) {
			continue
		}
		if skip != nil && skip(id) {
			continue
		}
		tok := t.tokens[id]
		if rest, ok := strings.CutPrefix(tok, continuation); ok {
			b.WriteString(rest)
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		first = false
	}
	return b.String()
}

func (t *Tokenizer) wordpiece(word string) []int {
	runes := []rune(word)
	if len(runes) > maxWordChars {
		return []int{t.unkID}
	}
	var out []int
	start := 0
	for start < len(runes) {
		end := len(runes)
		cur := -1
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = continuation + sub
			}
			if id, ok := t.ids[sub]; ok {
				cur = id
				break
			}
			end--
		}
		if cur < 0 {
			return []int{t.unkID}
		}
		out = append(out, cur)
		start = end
	}
	return out
}

// basicTokenize splits text into words: whitespace separated, punctuation
// split off, CJK characters isolated into single-rune tokens.
func basicTokenize(text string, lowercase bool) []string {
	if lowercase {
		text = strings.ToLower(text)
	}
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		case isCJK(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// isCJK reports whether r falls in the CJK unified ideograph, hiragana,
// katakana or hangul ranges, matching BERT's Chinese-character handling.
func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF, // CJK unified
		r >= 0x3400 && r <= 0x4DBF, // CJK extension A
		r >= 0xF900 && r <= 0xFAFF, // CJK compatibility
		r >= 0x3040 && r <= 0x309F, // hiragana
		r >= 0x30A0 && r <= 0x30FF, // katakana
		r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return true
	}
	return false
}
