// Package bootstrap wires the process-level dependencies shared by the
// server and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/repository"
	"agora/internal/seed"
	"agora/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis and optionally runs built-in seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedBuiltIns {
		if err := SeedBuiltIns(context.Background(), cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in communities: %w", err)
		}
	}

	return db, r, nil
}

// SeedBuiltIns ensures the system account and the built-in communities exist.
func SeedBuiltIns(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	svc := Services(cfg, db, nil)
	owner, err := seed.SystemUser(ctx, svc, repository.NewUserRepository(db), cfg.AdminEmailDomain)
	if err != nil {
		return fmt.Errorf("system user: %w", err)
	}
	created, err := seed.Communities(ctx, svc, owner.ID)
	if err != nil {
		return err
	}
	middleware.Logger.Info("built-in communities ensured", slog.Int("created", created))
	return nil
}

// Services builds the service graph from cfg. events may be nil.
func Services(cfg *config.Config, db *gorm.DB, events service.EventPublisher) *service.Services {
	return service.New(db, service.Options{
		BcryptCost:        cfg.BcryptCost,
		AdminEmailDomain:  cfg.AdminEmailDomain,
		UsernameCacheSize: cfg.UsernameCacheSize,
		Events:            events,
	})
}
