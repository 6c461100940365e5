package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the parley configuration file
// (~/.config/parley/config.yaml). All fields are pointers or strings so we
// can distinguish "not set" from zero values.
type Config struct {
	Checkpoint   string `yaml:"checkpoint"`
	Dataset      string `yaml:"dataset"`
	DatasetCache string `yaml:"dataset_cache"`
	Lang         string `yaml:"lang"`

	MaxTurns    *int64   `yaml:"max_turns"`
	MaxLength   *int64   `yaml:"max_length"`
	MinLength   *int64   `yaml:"min_length"`
	Temperature *float64 `yaml:"temperature"`
	TopK        *int64   `yaml:"top_k"`
	TopP        *float64 `yaml:"top_p"`
	Seed        *int64   `yaml:"seed"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
	SaveDir       string `yaml:"save_dir"`
	Prefix        string `yaml:"prefix"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "parley", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or doesn't parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyConfig fills in config file defaults for flags the user did not set.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.Checkpoint != "" && !c.IsSet("checkpoint") {
		checkpointDir = cfg.Checkpoint
	}
	if cfg.Dataset != "" && !c.IsSet("dataset") {
		datasetPath = cfg.Dataset
	}
	if cfg.DatasetCache != "" && !c.IsSet("dataset-cache") {
		datasetCache = cfg.DatasetCache
	}
	if cfg.Lang != "" && !c.IsSet("lang") {
		langCode = cfg.Lang
	}
	if cfg.MaxTurns != nil && !c.IsSet("max-turns") {
		maxTurns = *cfg.MaxTurns
	}
	if cfg.MaxLength != nil && !c.IsSet("max-length") && !c.IsSet("max_length") {
		maxLength = *cfg.MaxLength
	}
	if cfg.MinLength != nil && !c.IsSet("min-length") && !c.IsSet("min_length") {
		minLength = *cfg.MinLength
	}
	if cfg.Temperature != nil && !c.IsSet("temp") && !c.IsSet("temperature") {
		temperature = *cfg.Temperature
	}
	if cfg.TopK != nil && !c.IsSet("top-k") && !c.IsSet("top_k") && !c.IsSet("topk") {
		topK = *cfg.TopK
	}
	if cfg.TopP != nil && !c.IsSet("top-p") && !c.IsSet("top_p") && !c.IsSet("topp") {
		topP = *cfg.TopP
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
