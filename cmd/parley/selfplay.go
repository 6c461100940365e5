package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/dataset"
	"github.com/samcharles93/parley/internal/selfplay"
	"github.com/samcharles93/parley/internal/transcript"
)

func selfplayCmd() *cli.Command {
	var (
		saveDir       string
		prefix        string
		conversations int64
		exchanges     int64
	)

	flags := joinFlags(commonModelFlags(), samplingFlags(), loggingFlags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "save-dir",
				Usage:       "directory for self-play transcripts",
				Value:       "selfplay",
				Destination: &saveDir,
			},
			&cli.StringFlag{
				Name:        "prefix",
				Usage:       "transcript file name prefix",
				Value:       "parley_",
				Destination: &prefix,
			},
			&cli.Int64Flag{
				Name:        "conversations",
				Aliases:     []string{"n"},
				Usage:       "number of self-play conversations",
				Value:       50,
				Destination: &conversations,
			},
			&cli.Int64Flag{
				Name:        "exchanges",
				Usage:       "model replies per conversation",
				Value:       13,
				Destination: &exchanges,
			},
		})

	return &cli.Command{
		Name:  "selfplay",
		Usage: "Let two bots with different personas chat with each other",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyConfig(c, cfg)
			if cfg.SaveDir != "" && !c.IsSet("save-dir") {
				saveDir = cfg.SaveDir
			}
			if cfg.Prefix != "" && !c.IsSet("prefix") {
				prefix = cfg.Prefix
			}
			log := buildLogger()

			rt, err := loadRuntime(log, true)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			langTag, err := selectLanguage()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			langName, _ := dataset.Name(langTag)

			writer, err := transcript.Open(saveDir, prefix, langName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = writer.Close() }()

			runner := &selfplay.Runner{
				Engine:    rt.engine,
				Tok:       rt.tok,
				Specials:  rt.specials,
				Corpus:    rt.corpus,
				Writer:    writer,
				Rng:       rt.rng,
				Log:       log,
				MaxTurns:  int(maxTurns),
				Exchanges: int(exchanges),
				Out:       os.Stdout,
			}

			log.Info("starting self-play",
				"lang", langTag,
				"conversations", conversations,
				"transcript", writer.Path())

			if err := runner.Run(ctx, langTag, int(conversations)); err != nil {
				return cli.Exit(fmt.Sprintf("error: self-play: %v", err), 1)
			}

			log.Info("self-play finished", "transcript", writer.Path())
			return nil
		},
	}
}
