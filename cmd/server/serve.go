package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/flashpizza/internal/alarm"
	"github.com/example/flashpizza/internal/config"
	"github.com/example/flashpizza/internal/database"
	"github.com/example/flashpizza/internal/handlers"
	"github.com/example/flashpizza/internal/logger"
	"github.com/example/flashpizza/internal/models"
	"github.com/example/flashpizza/internal/notifications"
	"github.com/example/flashpizza/internal/orders"
	"github.com/example/flashpizza/internal/routes"
	"github.com/example/flashpizza/internal/seed"
	"github.com/example/flashpizza/internal/services"
	"github.com/example/flashpizza/internal/session"
	"github.com/example/flashpizza/internal/state"
	"github.com/example/flashpizza/internal/store"
	"github.com/example/flashpizza/internal/storefront"
)

const shutdownTimeout = 5 * time.Second

// openStore selects the backend from DATABASE_URL and seeds empty collections.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*store.Adapter, func(), error) {
	var backend store.Backend
	cleanup := func() {}

	if cfg.Realtime() {
		db, err := database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		backend = store.NewPostgresBackend(db, cfg.DatabaseURL, log)
		cleanup = func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	} else {
		local, err := store.NewLocalBackend(cfg.StorageDir, cfg.PollInterval, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage dir %s: %w", cfg.StorageDir, err)
		}
		backend = local
	}

	adapter, err := store.Open(ctx, backend, seed.Defaults(), log)
	if err != nil {
		_ = backend.Close()
		cleanup()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	log.Info("store opened", zap.String("mode", string(adapter.Mode())))
	return adapter, func() {
		if err := adapter.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
		cleanup()
	}, nil
}

func seedStore(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
	_, closeStore, err := openStore(c.Context, cfg, log)
	if err != nil {
		return err
	}
	closeStore()
	log.Info("seed complete")
	return nil
}

func openSessions(ctx context.Context, cfg *config.Config, log *zap.Logger) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("sessions kept in memory")
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}
	client, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("sessions kept in redis")
	return session.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}

func serve(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, closeSessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()

	telegram, err := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	if err != nil {
		return err
	}

	acks, err := store.NewAckFile(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("open acknowledged orders: %w", err)
	}
	arrivals, err := orders.NewArrivalDetector(acks, log)
	if err != nil {
		return err
	}

	notes := notifications.NewCenter()
	ring := alarm.New(alarm.BellRinger{W: os.Stdout}, cfg.AlarmInterval, log)
	defer ring.Stop()

	arrivals.OnArrival(func(o models.Order) {
		notes.ShowToast(notifications.AdminScope, models.ToastInfo,
			fmt.Sprintf("New Order #%s - %s", o.ShortID(), services.FormatPrice(o.Total)))
		go func() { _ = telegram.NotifyNewOrder(o) }()
	})

	data := state.New(adapter, seed.StoreConfig(), log)
	data.OnOrders(arrivals.Observe)
	data.OnOrders(ring.Evaluate)
	if err := data.Start(ctx); err != nil {
		return err
	}
	defer data.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "Flash Pizza",
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: cfg.Production(),
	})
	app.Use(recover.New())
	app.Use(logger.RequestLogger(log))

	err = routes.Register(app, routes.Deps{
		Config:    cfg,
		Data:      data,
		Shop:      storefront.NewService(data, sessions, notes, log),
		Lifecycle: orders.NewLifecycle(data, notes, log),
		Arrivals:  arrivals,
		Notes:     notes,
		Telegram:  telegram,
		Log:       log,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			return fmt.Errorf("fiber.Listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
