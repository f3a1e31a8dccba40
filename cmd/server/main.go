package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/app"
	"github.com/fastygo/taskboard/internal/config"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/logger"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.SignalContext(context.Background())
	defer cancel()

	stores, probes, err := openStores(appCtx, cfg, manager, zapLogger)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal("storage initialisation failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	mon := monitor.New(cfg.Health.Interval, zapLogger, probes...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	server := &fasthttp.Server{
		Handler:            app.NewHandler(cfg, stores, mon, zapLogger),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("env", cfg.Environment),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server crashed", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStores connects the configured storage driver and returns its
// repositories with the matching health probes.
func openStores(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) (app.Stores, []monitor.Probe, error) {
	switch cfg.Storage.Driver {
	case config.StorageBolt:
		db, err := boltInfra.Open(cfg.Storage.BoltPath, zapLogger)
		if err != nil {
			return app.Stores{}, nil, err
		}
		manager.Register("bolt", func(context.Context) error {
			return db.Close()
		})
		stores := app.Stores{
			Tasks:    boltRepo.NewTaskRepository(db),
			Users:    boltRepo.NewUserRepository(db),
			Sessions: boltRepo.NewSessionRepository(db, cfg.JWT.TTL),
		}
		probes := []monitor.Probe{{
			Name:  "bolt",
			Check: func(ctx context.Context) error { return boltInfra.Ping(ctx, db) },
		}}
		return stores, probes, nil

	default:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			return app.Stores{}, nil, err
		}

		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			return app.Stores{}, nil, err
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})

		redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, zapLogger)
		if err != nil {
			return app.Stores{}, nil, err
		}
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})

		stores := app.Stores{
			Tasks:    postgres.NewTaskRepository(pool),
			Users:    postgres.NewUserRepository(pool),
			Sessions: redisRepo.NewSessionRepository(redisClient, cfg.JWT.TTL),
		}
		probes := []monitor.Probe{
			{Name: "postgresql", Check: pool.Ping},
			{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		}
		return stores, probes, nil
	}
}
