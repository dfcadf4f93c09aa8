package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/expertbooking/config"
	"github.com/Domenick1991/expertbooking/internal/migrations"
	"github.com/Domenick1991/expertbooking/internal/repository"
	"github.com/Domenick1991/expertbooking/internal/seed"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage holds the Slot Store and Booking Ledger for the configured driver.
type Storage struct {
	Experts  repository.ExpertRepository
	Bookings repository.BookingRepository
	close    func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func OpenStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		experts, err := seed.Default()
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, store.Experts(), experts); err != nil {
			return nil, err
		}
		return &Storage{Experts: store.Experts(), Bookings: store.Bookings()}, nil

	case config.StorageDriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		if cfg.Database.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Database.MaxConns
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		if cfg.Storage.Migrate {
			if err := migrations.Up(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			version, err := migrations.Version(ctx, pool)
			if err == nil {
				log.Info("database migrated", zap.Int64("version", version))
			}
		}

		return &Storage{
			Experts:  repository.NewExpertRepository(pool),
			Bookings: repository.NewBookingRepository(pool),
			close:    pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
