package main

import (
	"context"
	"log"
	"os"

	"github.com/Domenick1991/expertbooking/config"
	"github.com/Domenick1991/expertbooking/internal/bootstrap"
	"github.com/Domenick1991/expertbooking/internal/logger"
	"github.com/Domenick1991/expertbooking/internal/seed"
	"go.uber.org/zap"
)

// seed replaces all experts with the catalogue from SEED_FILE, or the
// built-in one when unset.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()

	experts, err := seed.Default()
	if path := os.Getenv("SEED_FILE"); path != "" {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			lg.Fatal("read seed file", zap.String("path", path), zap.Error(readErr))
		}
		experts, err = seed.Parse(data)
	}
	if err != nil {
		lg.Fatal("load experts", zap.Error(err))
	}

	storage, err := bootstrap.OpenStorage(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("open storage", zap.Error(err))
	}
	defer storage.Close()

	if err := seed.Apply(ctx, storage.Experts, experts); err != nil {
		lg.Fatal("seed experts", zap.Error(err))
	}
	lg.Info("experts seeded", zap.Int("count", len(experts)))
}
