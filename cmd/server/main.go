package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CodeConiglietto/diggdrasil-sub000/internal/engine"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/server"
	"github.com/CodeConiglietto/diggdrasil-sub000/internal/version"
	"github.com/CodeConiglietto/diggdrasil-sub000/pkg/logger"
	"github.com/sirupsen/logrus"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	cfg := engine.NewConfig()
	var seed int64
	flag.Int64Var(&seed, "seed", 0, "World seed for a new save (0 for random)")
	flag.StringVar(&cfg.SaveDir, "save", cfg.SaveDir, "Save directory")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend: file, leveldb or memory")
	flag.IntVar(&cfg.MaxTicks, "ticks", cfg.MaxTicks, "Stop after N ticks (0 = run until interrupted)")
	flag.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Delay between ticks")
	flag.IntVar(&cfg.Creatures, "creatures", cfg.Creatures, "Creatures spawned with a new save")
	flag.IntVar(&cfg.VisionRadius, "vision", cfg.VisionRadius, "Vision radius of the tracked explorer")
	flag.Parse()

	logger.Log.Info("Starting Diggdrasil...")
	logger.Log.Info(version.String())

	if seed != 0 {
		cfg.Seed = seed
	}
	logger.Log.WithFields(logrus.Fields{
		"seed":    cfg.Seed,
		"backend": cfg.Backend,
		"dir":     cfg.SaveDir,
	}).Info("Configuration loaded")

	port := os.Getenv("DIGG_PORT")
	if port == "" {
		port = "8080"
	}

	// 2. Хранилище и ядро
	store, err := engine.OpenStore(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open save store")
	}
	gameService, err := engine.NewService(cfg, store)
	if err != nil {
		store.Close()
		logger.Log.WithError(err).Fatal("Failed to start simulation")
	}

	// Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Запуск сервера
	srv := server.New(gameService, port)
	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("Server error")
			stop()
		}
	}()

	start := time.Now()
	runErr := gameService.Run(ctx)
	stop()

	logger.Log.WithField("uptime", time.Since(start).Round(time.Second)).Info("Shutting down...")
	if err := gameService.Close(); err != nil {
		logger.Log.WithError(err).Error("Failed to close save store")
	}
	if runErr != nil {
		logger.Log.WithError(runErr).Fatal("Simulation stopped with error")
	}
	logger.Log.Info("Done.")
}
