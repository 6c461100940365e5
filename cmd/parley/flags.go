package main

import "github.com/urfave/cli/v3"

var (
	checkpointDir string
	datasetPath   string
	datasetCache  string
	langCode      string
	maxTurns      int64
	cased         bool
	logLevel      string
	logFormat     string

	maxLength   int64
	minLength   int64
	temperature float64
	topK        int64
	topP        float64
	noSample    bool
	seed        int64
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "checkpoint",
			Aliases:     []string{"m"},
			Usage:       "path to checkpoint directory (config.json, model.bin, vocab.txt, added_tokens.json)",
			Destination: &checkpointDir,
		},
		&cli.StringFlag{
			Name:        "dataset",
			Aliases:     []string{"d"},
			Usage:       "path to the persona dataset JSON",
			Destination: &datasetPath,
		},
		&cli.StringFlag{
			Name:        "dataset-cache",
			Usage:       "path to the tokenized dataset cache (default <dataset>.cache)",
			Destination: &datasetCache,
		},
		&cli.StringFlag{
			Name:        "lang",
			Aliases:     []string{"l"},
			Usage:       "language code (en, fr, it, id, jp, ko, zh); chat prompts when unset",
			Destination: &langCode,
		},
		&cli.Int64Flag{
			Name:        "max-turns",
			Usage:       "number of previous utterances to keep in history",
			Value:       3,
			Destination: &maxTurns,
		},
		&cli.BoolFlag{
			Name:        "cased",
			Usage:       "disable lowercasing during tokenization",
			Destination: &cased,
		},
	}
}

func samplingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "max-length",
			Aliases:     []string{"max_length"},
			Usage:       "maximum length of the output utterances",
			Value:       20,
			Destination: &maxLength,
		},
		&cli.Int64Flag{
			Name:        "min-length",
			Aliases:     []string{"min_length"},
			Usage:       "minimum length of the output utterances",
			Value:       1,
			Destination: &minLength,
		},
		&cli.Float64Flag{
			Name:        "temp",
			Aliases:     []string{"temperature", "t"},
			Usage:       "sampling softmax temperature",
			Value:       0.7,
			Destination: &temperature,
		},
		&cli.Int64Flag{
			Name:        "top-k",
			Aliases:     []string{"top_k", "topk"},
			Usage:       "filter top-k tokens before sampling (<=0: no filtering)",
			Value:       0,
			Destination: &topK,
		},
		&cli.Float64Flag{
			Name:        "top-p",
			Aliases:     []string{"top_p", "topp"},
			Usage:       "nucleus (top-p) filtering before sampling (<=0: no filtering)",
			Value:       0.9,
			Destination: &topP,
		},
		&cli.BoolFlag{
			Name:        "no-sample",
			Aliases:     []string{"no_sample", "greedy"},
			Usage:       "use greedy decoding instead of sampling",
			Destination: &noSample,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "RNG seed (default -1 = time-derived)",
			Value:       -1,
			Destination: &seed,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}
