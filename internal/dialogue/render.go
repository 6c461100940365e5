package dialogue

import (
	"strings"

	"github.com/samcharles93/parley/internal/tokenizer"
)

// RenderReply decodes a generated reply to display text, dropping special
// tokens. stripSpaces removes inter-token spaces, which is how CJK replies
// are printed and logged.
func RenderReply(t *tokenizer.Tokenizer, sp *tokenizer.Specials, ids []int, stripSpaces bool) string {
	text := t.Decode(ids, sp.IsSpecial)
	if stripSpaces {
		text = strings.Join(strings.Fields(text), "")
	}
	return text
}
