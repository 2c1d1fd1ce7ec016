// Package bootstrap wires up runtime dependencies shared by the server
// and tooling commands.
package bootstrap

import (
	"fmt"
	"strings"

	"basspress/internal/cache"
	"basspress/internal/config"
	"basspress/internal/database"
	"basspress/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureDevAdmin creates a known admin account in development.
	EnsureDevAdmin bool
}

// InitRuntime connects to DB and Redis and optionally provisions a
// development admin account.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis client is nil when unreachable; callers degrade gracefully.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.EnsureDevAdmin && strings.EqualFold(cfg.Env, "development") {
		if _, err := seed.EnsureAdmin(db, "admin@basspress.local", "Admin123"); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
		}
	}

	return db, r, nil
}
