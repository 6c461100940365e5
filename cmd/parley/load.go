package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/samcharles93/parley/internal/dataset"
	"github.com/samcharles93/parley/internal/inference"
	"github.com/samcharles93/parley/internal/logger"
	"github.com/samcharles93/parley/internal/logits"
	"github.com/samcharles93/parley/internal/model"
	"github.com/samcharles93/parley/internal/tokenizer"
)

// runtime bundles everything the chat, selfplay and serve commands share.
type runtime struct {
	log      logger.Logger
	tok      *tokenizer.Tokenizer
	specials *tokenizer.Specials
	model    *model.Seq2Seq
	corpus   *dataset.Corpus
	rng      *rand.Rand
	engine   *inference.Generator
}

func buildLogger() logger.Logger {
	return logger.New(os.Stderr, logFormat, logger.ParseLevel(logLevel))
}

// loadRuntime loads checkpoint, tokenizer, special-token map and (when
// needDataset is set) the persona corpus, then wires the generator from the
// sampling flags.
func loadRuntime(log logger.Logger, needDataset bool) (*runtime, error) {
	if checkpointDir == "" {
		return nil, fmt.Errorf("--checkpoint is required")
	}

	loadStart := time.Now()

	tok, err := tokenizer.Load(filepath.Join(checkpointDir, "vocab.txt"), !cased)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	specials, err := tokenizer.LoadSpecials(filepath.Join(checkpointDir, "added_tokens.json"))
	if err != nil {
		return nil, err
	}

	m, err := model.Load(checkpointDir)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if v := m.Config().VocabSize; v < tok.VocabSize() || v <= specials.MaxID() {
		return nil, fmt.Errorf("checkpoint vocab %d too small for tokenizer (%d tokens, max special id %d)",
			v, tok.VocabSize(), specials.MaxID())
	}

	log.Info("checkpoint loaded",
		"dir", checkpointDir,
		"vocab", m.Config().VocabSize,
		"hidden", m.Config().HiddenSize,
		"duration", time.Since(loadStart).String())

	if seed == -1 {
		seed = time.Now().UnixNano()
	}

	rt := &runtime{
		log:      log,
		tok:      tok,
		specials: specials,
		model:    m,
		rng:      rand.New(rand.NewSource(seed)),
	}

	if needDataset {
		if datasetPath == "" {
			return nil, fmt.Errorf("--dataset is required")
		}
		cache := datasetCache
		if cache == "" {
			cache = datasetPath + ".cache"
		}
		corpus, err := dataset.Load(datasetPath, cache, tok, log)
		if err != nil {
			return nil, err
		}
		rt.corpus = corpus
	}

	rt.engine = &inference.Generator{
		Model: m,
		Sampler: logits.NewSampler(logits.SamplerConfig{
			Seed:        seed,
			Temperature: float32(temperature),
			TopK:        int(topK),
			TopP:        float32(topP),
			Greedy:      noSample,
		}),
		Specials:  specials,
		MaxLength: int(maxLength),
		MinLength: int(minLength),
		Log:       log,
	}

	log.Info("sampling",
		"temp", temperature,
		"top_k", topK,
		"top_p", topP,
		"greedy", noSample,
		"seed", seed)

	return rt, nil
}
