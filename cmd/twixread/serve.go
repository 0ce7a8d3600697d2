package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/twixread/internal/api"
	"github.com/samcharles93/twixread/internal/logger"
	"github.com/samcharles93/twixread/internal/version"
)

func serveCmd(o *options) *cli.Command {
	var (
		addr        string
		dataRoot    string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the inspect and convert HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "data-root",
				Usage:       "directory request paths must stay inside after symlinks are resolved (empty allows any path)",
				Destination: &dataRoot,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := o.prepare(ctx, cmd)
			if err != nil {
				return err
			}
			if cfg.ServerAddress != "" && !isSet(cmd, "addr") {
				addr = cfg.ServerAddress
			}
			if cfg.DataRoot != "" && !isSet(cmd, "data-root") {
				dataRoot = cfg.DataRoot
			}
			log := logger.FromContext(ctx)

			server := api.NewServer(api.Config{
				Root:    dataRoot,
				Version: version.String(),
				Logger:  log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "data_root", dataRoot)
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
