package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config describes the scorer's shape, parsed from config.json in the
// checkpoint directory.
type Config struct {
	VocabSize    int `json:"vocab_size"`
	HiddenSize   int `json:"hidden_size"`
	MaxPositions int `json:"max_position_embeddings"`
}

// LoadConfig reads and validates config.json from a checkpoint directory.
func LoadConfig(dir string) (Config, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return Config{}, fmt.Errorf("read config.json: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config.json: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.VocabSize <= 0 {
		return fmt.Errorf("config: vocab_size must be positive, got %d", c.VocabSize)
	}
	if c.HiddenSize <= 0 {
		return fmt.Errorf("config: hidden_size must be positive, got %d", c.HiddenSize)
	}
	if c.MaxPositions <= 0 {
		return fmt.Errorf("config: max_position_embeddings must be positive, got %d", c.MaxPositions)
	}
	return nil
}

// paramCount returns the number of float32 weights model.bin must hold.
func (c Config) paramCount() int {
	return c.VocabSize*c.HiddenSize + // token embeddings
		c.MaxPositions*c.HiddenSize + // position embeddings
		c.HiddenSize*c.HiddenSize + // decoder projection
		c.VocabSize // output bias
}
