package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/api"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	flags := joinFlags(commonModelFlags(), samplingFlags(), loggingFlags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		})

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve chat sessions over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := LoadConfig()
			applyConfig(c, cfg)
			if cfg.ServerAddress != "" && !c.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			log := buildLogger()

			rt, err := loadRuntime(log, true)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			server := &api.Server{
				Engine:   rt.engine,
				Tok:      rt.tok,
				Specials: rt.specials,
				Corpus:   rt.corpus,
				Store:    api.NewSessionStore(),
				Rng:      rt.rng,
				MaxTurns: int(maxTurns),
			}

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
