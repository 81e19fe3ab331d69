// Package bootstrap prepares the database and Redis connections shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/seed"
	"agora/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedNotices creates the built-in notice boards for the development root admin.
	SeedNotices bool
}

// InitRuntime connects to DB and Redis and optionally runs built-in seeding.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	root, err := ensureDevRootAdmin(cfg, db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedNotices && root != nil {
		created, err := seed.Notices(db, root.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in notices: %w", err)
		}
		if created > 0 {
			middleware.Logger.Info("Seeded built-in notices", slog.Int("count", created))
		}
	}

	return db, r, nil
}

// ensureDevRootAdmin creates or promotes the development root account. It returns nil
// without touching the database outside development or when the feature is off.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) (*models.User, error) {
	if cfg == nil || db == nil {
		return nil, nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil, nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "agora_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@agora.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return nil, fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := service.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash root password: %w", err)
	}

	var root models.User
	if err := db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username: username,
				Email:    email,
				Password: hashedPassword,
				Name:     "Root",
				Role:     models.RoleAdmin,
				Status:   models.UserStatusActive,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		}

		root.ChangeRole(models.RoleAdmin)
		root.ChangeStatus(models.UserStatusActive)
		return tx.Model(&models.User{}).Where("id = ?", root.ID).Updates(map[string]any{
			"role":   root.Role,
			"status": root.Status,
		}).Error
	}); err != nil {
		return nil, err
	}

	cache.InvalidateUser(context.Background(), root.ID)
	middleware.Logger.Info("Development root admin ensured",
		slog.Uint64("user_id", uint64(root.ID)),
		slog.String("email", root.Email),
	)
	return &root, nil
}
