package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"agora/internal/middleware"

	"gorm.io/gorm"
)

// AppliedMigration is one row of the schema_migrations ledger.
type AppliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName pins the ledger table name.
func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies and reverts SQL migrations in version order. Every script runs in
// the same transaction as its ledger write.
type Migrator struct {
	db    *gorm.DB
	known []Migration
}

// NewMigrator returns a Migrator over known, which must be sorted by version.
func NewMigrator(db *gorm.DB, known []Migration) *Migrator {
	return &Migrator{db: db, known: known}
}

// Applied lists the ledger in version order. A missing ledger table means nothing
// has been applied yet.
func (m *Migrator) Applied(ctx context.Context) ([]AppliedMigration, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&AppliedMigration{}) {
		return nil, nil
	}
	var rows []AppliedMigration
	if err := db.Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return rows, nil
}

// Pending returns the known migrations that are not in the ledger. It fails when the
// ledger holds versions this binary does not know or scripts that changed after apply.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkDrift(applied, m.known); err != nil {
		return nil, err
	}

	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	var pending []Migration
	for _, mig := range m.known {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration and reports how many ran. It stops at the first failure.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&AppliedMigration{}); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, mig := range pending {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&AppliedMigration{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum()}).Error
		})
		if err != nil {
			return i, fmt.Errorf("apply %s: %w", mig, err)
		}
		middleware.Logger.Info("Migration applied", slog.String("migration", mig.String()))
	}
	return len(pending), nil
}

// Down reverts version, which must be the most recently applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	idx := slices.IndexFunc(m.known, func(mig Migration) bool { return mig.Version == version })
	if idx < 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	mig := m.known[idx]

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 || !slices.ContainsFunc(applied, func(a AppliedMigration) bool { return a.Version == version }) {
		return fmt.Errorf("migration %s has not been applied", mig)
	}
	if latest := applied[len(applied)-1]; latest.Version != version {
		return fmt.Errorf("migration %06d_%s is newer; roll it back first", latest.Version, latest.Name)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.Down).Error; err != nil {
			return err
		}
		return tx.Where("version = ?", version).Delete(&AppliedMigration{}).Error
	})
	if err != nil {
		return fmt.Errorf("roll back %s: %w", mig, err)
	}
	middleware.Logger.Info("Migration rolled back", slog.String("migration", mig.String()))
	return nil
}

func checkDrift(applied []AppliedMigration, known []Migration) error {
	byVersion := make(map[int]Migration, len(known))
	for _, mig := range known {
		byVersion[mig.Version] = mig
	}

	var problems []string
	for _, a := range applied {
		mig, ok := byVersion[a.Version]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%06d_%s is applied but unknown to this binary", a.Version, a.Name))
		case a.Checksum != "" && a.Checksum != mig.Checksum():
			problems = append(problems, fmt.Sprintf("%s was edited after it was applied", mig))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("schema_migrations does not match the embedded migrations: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RunMigrations applies the embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	_, err := NewMigrator(db, Migrations()).Up(ctx)
	return err
}

// RollbackMigration reverts the embedded migration with the given version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, Migrations()).Down(ctx, version)
}
