package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/models"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPolicy is what ApplySchema does for a given configuration.
type SchemaPolicy struct {
	Mode        string
	Environment string
	RunSQL      bool
	RunAuto     bool
}

// SchemaStatus is a SchemaPolicy plus the state of the migration ledger.
type SchemaStatus struct {
	SchemaPolicy
	Applied []AppliedMigration
	Pending []Migration
}

// ResolveSchemaPolicy maps DB_SCHEMA_MODE and APP_ENV to a policy. Hybrid (the default)
// runs the SQL migrations everywhere and AutoMigrate outside production-like environments;
// auto in production needs DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE.
func ResolveSchemaPolicy(cfg *config.Config) (SchemaPolicy, error) {
	p := SchemaPolicy{
		Mode:        strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)),
		Environment: cfg.Env,
	}
	if p.Mode == "" {
		p.Mode = SchemaModeHybrid
	}

	switch env := strings.ToLower(strings.TrimSpace(cfg.Env)); p.Mode {
	case SchemaModeSQL:
		p.RunSQL = true
	case SchemaModeHybrid:
		p.RunSQL = true
		p.RunAuto = !productionLike(env)
	case SchemaModeAuto:
		if productionLike(env) && !cfg.DBAutoMigrateAllowDestructive {
			return p, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		p.RunAuto = true
	default:
		return p, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", p.Mode)
	}
	return p, nil
}

func productionLike(env string) bool {
	switch env {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// AutoMigrate creates or updates the user, board and comment tables, parents first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Board{}, &models.Comment{})
}

// ApplySchema brings the schema up to date according to the resolved policy.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	p, err := ResolveSchemaPolicy(cfg)
	if err != nil {
		return err
	}

	if p.RunSQL {
		n, err := NewMigrator(db, Migrations()).Up(ctx)
		if err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		middleware.Logger.Info("SQL migrations up to date", slog.Int("applied", n))
	}
	if p.RunAuto {
		if p.Mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("AutoMigrate allowed in a production-like environment; review schema diffs before deploying")
		}
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", p.Mode), slog.String("env", p.Environment))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the policy and the migration ledger without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	p, err := ResolveSchemaPolicy(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPolicy: p}
	if !p.RunSQL {
		return status, nil
	}

	m := NewMigrator(db, Migrations())
	if status.Applied, err = m.Applied(ctx); err != nil {
		return nil, err
	}
	if status.Pending, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
