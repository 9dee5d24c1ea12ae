package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/config"
	"github.com/example/flashpizza/internal/logger"
)

func main() {
	app := &cli.App{
		Name:  "flashpizza",
		Usage: "Flash Pizza storefront and admin server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: withEnv(serve),
			},
			{
				Name:   "seed",
				Usage:  "seed empty collections with the default menu, coupons and store settings",
				Action: withEnv(seedStore),
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("flashpizza: %v", err)
	}
}

type action func(c *cli.Context, cfg *config.Config, log *zap.Logger) error

// withEnv loads configuration and the logger before running fn.
func withEnv(fn action) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		zlog, err := logger.New(cfg.AppEnv)
		if err != nil {
			return err
		}
		defer func() { _ = zlog.Sync() }()
		return fn(c, cfg, zlog)
	}
}
