package dataset

import (
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/parley/internal/logger"
	"github.com/samcharles93/parley/internal/tokenizer"
)

// Dialog is one corpus entry; only the persona sentences matter here.
type Dialog struct {
	Persona []string `json:"persona"`
}

// file is the on-disk corpus layout: splits keyed by language name.
type file struct {
	Train map[string][]Dialog `json:"train"`
	Valid map[string][]Dialog `json:"valid"`
	Test  map[string][]Dialog `json:"test"`
}

// Corpus holds test-split personas tokenized to ids: language name ->
// personas -> sentences -> token ids.
type Corpus struct {
	Personalities map[string][][][]int
}

// Load reads the corpus. When cachePath holds a cache at least as fresh as
// the dataset it is used directly; otherwise the JSON is parsed, the
// test-split personas are tokenized, and the cache is rewritten
// (best-effort).
func Load(path, cachePath string, tok *tokenizer.Tokenizer, log logger.Logger) (*Corpus, error) {
	if c, ok := loadCache(path, cachePath); ok {
		log.Info("loaded tokenized corpus from cache", "cache", cachePath)
		return c, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(f.Test) == 0 {
		return nil, fmt.Errorf("dataset %s has no test split", path)
	}

	c := &Corpus{Personalities: make(map[string][][][]int, len(f.Test))}
	for lang, dialogs := range f.Test {
		personas := make([][][]int, 0, len(dialogs))
		for _, d := range dialogs {
			if len(d.Persona) == 0 {
				continue
			}
			sentences := make([][]int, 0, len(d.Persona))
			for _, sent := range d.Persona {
				sentences = append(sentences, tok.Encode(sent))
			}
			personas = append(personas, sentences)
		}
		c.Personalities[lang] = personas
	}
	log.Info("tokenized corpus", "languages", len(c.Personalities))

	if cachePath != "" {
		if err := writeCache(cachePath, c); err != nil {
			log.Warn("write dataset cache failed", "cache", cachePath, "err", err)
		}
	}
	return c, nil
}

// Personas returns the tokenized personas for a language tag such as "<en>".
func (c *Corpus) Personas(tag string) ([][][]int, error) {
	name, ok := Name(tag)
	if !ok {
		return nil, fmt.Errorf("unsupported language %s", tag)
	}
	personas := c.Personalities[name]
	if len(personas) == 0 {
		return nil, fmt.Errorf("dataset has no personas for %s", name)
	}
	return personas, nil
}

// SamplePersona draws one persona for the language with the provided RNG.
func (c *Corpus) SamplePersona(rng *rand.Rand, tag string) ([][]int, error) {
	personas, err := c.Personas(tag)
	if err != nil {
		return nil, err
	}
	return personas[rng.Intn(len(personas))], nil
}

func loadCache(datasetPath, cachePath string) (*Corpus, bool) {
	if cachePath == "" {
		return nil, false
	}
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}
	if dataInfo, err := os.Stat(datasetPath); err == nil {
		if cacheInfo.ModTime().Before(dataInfo.ModTime()) {
			return nil, false
		}
	}
	f, err := os.Open(cachePath)
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	var c Corpus
	if err := gob.NewDecoder(f).Decode(&c); err != nil {
		return nil, false
	}
	return &c, true
}

func writeCache(cachePath string, c *Corpus) error {
	tmp := cachePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, cachePath)
}
