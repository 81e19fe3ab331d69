package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, configurePool(db, &config.Config{}))
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t,
		"host=db port=5432 user=agora password=pw dbname=agora sslmode=disable",
		buildDSN("db", "5432", "agora", "pw", "agora", ""))
	assert.Contains(t, buildDSN("db", "5432", "u", "p", "n", "require"), "sslmode=require")
}

func TestReadDBRouting(t *testing.T) {
	t.Cleanup(func() { SetReadDB(nil) })
	assert.Nil(t, GetReadDB())

	replica := openSQLite(t)
	SetReadDB(replica)
	assert.Same(t, replica, GetReadDB())
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT 1", 1 }

	// fast successful queries are not logged at warn level
	l.Trace(ctx, time.Now(), query, nil)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.Trace(ctx, time.Now(), query, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	assert.Empty(t, buf.String())
}

func TestAutoMigrate_EnforcesDepthCheck(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"users", "boards", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	user := &models.User{Username: "u", Email: "u@example.com", Password: "x", Name: "U"}
	require.NoError(t, db.Create(user).Error)
	board := models.NewBoard(user.ID, "t", "c", "", "")
	require.NoError(t, db.Create(board).Error)

	ok := &models.Comment{BoardID: board.ID, AuthorID: user.ID, Content: "root", Depth: 0}
	require.NoError(t, db.Create(ok).Error)

	bad := &models.Comment{BoardID: board.ID, AuthorID: user.ID, Content: "too deep", Depth: 2}
	assert.Error(t, db.Create(bad).Error)
}
