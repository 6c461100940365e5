package tokenizer

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Token strings the checkpoint adds on top of the base vocabulary. Sequence
// assembly depends on all of them being present in added_tokens.json.
const (
	BOSToken      = "<bos>"
	EOSToken      = "<eos>"
	PersonaToken  = "<persona>"
	Speaker1Token = "<speaker1>"
	Speaker2Token = "<speaker2>"
)

// LangTags lists the language tag tokens, one per supported language.
var LangTags = []string{"<en>", "<fr>", "<it>", "<id>", "<jp>", "<ko>", "<zh>"}

// Specials holds the ids of the added special tokens.
type Specials struct {
	BOS      int
	EOS      int
	Persona  int
	Speaker1 int
	Speaker2 int
	Lang     map[string]int

	all map[int]struct{}
}

// LoadSpecials reads an added_tokens.json file mapping token strings to ids.
// Every structural token and every language tag must be present.
func LoadSpecials(path string) (*Specials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read special token map: %w", err)
	}
	return ParseSpecials(raw)
}

// ParseSpecials parses the added_tokens.json payload.
func ParseSpecials(raw []byte) (*Specials, error) {
	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse special token map: %w", err)
	}

	get := func(tok string) (int, error) {
		id, ok := m[tok]
		if !ok {
			return 0, fmt.Errorf("special token map is missing %s", tok)
		}
		return id, nil
	}

	sp := &Specials{
		Lang: make(map[string]int, len(LangTags)),
		all:  make(map[int]struct{}),
	}
	var (
		err  error
		errs []error
	)
	if sp.BOS, err = get(BOSToken); err != nil {
		errs = append(errs, err)
	}
	if sp.EOS, err = get(EOSToken); err != nil {
		errs = append(errs, err)
	}
	if sp.Persona, err = get(PersonaToken); err != nil {
		errs = append(errs, err)
	}
	if sp.Speaker1, err = get(Speaker1Token); err != nil {
		errs = append(errs, err)
	}
	if sp.Speaker2, err = get(Speaker2Token); err != nil {
		errs = append(errs, err)
	}
	for _, tag := range LangTags {
		id, err := get(tag)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sp.Lang[tag] = id
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	for _, id := range []int{sp.BOS, sp.EOS, sp.Persona, sp.Speaker1, sp.Speaker2} {
		sp.all[id] = struct{}{}
	}
	for _, id := range sp.Lang {
		sp.all[id] = struct{}{}
	}
	return sp, nil
}

// IsSpecial reports whether id is one of the added special tokens.
func (s *Specials) IsSpecial(id int) bool {
	_, ok := s.all[id]
	return ok
}

// LangID returns the id of a language tag such as "<en>".
func (s *Specials) LangID(tag string) (int, bool) {
	id, ok := s.Lang[tag]
	return id, ok
}

// MaxID returns the largest special token id. Checkpoint vocabularies must
// be at least this large.
func (s *Specials) MaxID() int {
	maxID := 0
	for id := range s.all {
		if id > maxID {
			maxID = id
		}
	}
	return maxID
}
