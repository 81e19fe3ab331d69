package seed

import (
	"os"
	"path/filepath"
	"testing"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func smallOptions() Options {
	return Options{
		Users:          3,
		Boards:         4,
		RootsPerBoard:  2,
		RepliesPerRoot: 2,
		DeletedRatio:   0.5,
		MaxDays:        10,
		RandomSeed:     42,
		SkipBcrypt:     true,
	}
}

func TestSeederRun(t *testing.T) {
	db := setupDB(t)

	summary, err := NewSeeder(db, smallOptions()).Run()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Users)
	assert.Equal(t, 4, summary.Boards)
	assert.Equal(t, 8, summary.Roots)
	assert.Equal(t, 16, summary.Replies)

	var users, boards, comments int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Board{}).Count(&boards).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 4, boards)
	assert.EqualValues(t, 24, comments)

	var deleted int64
	require.NoError(t, db.Model(&models.Comment{}).Where("is_deleted = ?", true).Count(&deleted).Error)
	assert.EqualValues(t, summary.Deleted, deleted)

	var all []models.Comment
	require.NoError(t, db.Find(&all).Error)
	byID := make(map[uint]models.Comment, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	for _, c := range all {
		if c.ParentID == nil {
			assert.Equal(t, models.RootDepth, c.Depth)
			continue
		}
		parent, ok := byID[*c.ParentID]
		require.True(t, ok, "reply %d has a dangling parent", c.ID)
		assert.Equal(t, models.ReplyDepth, c.Depth)
		assert.Equal(t, models.RootDepth, parent.Depth)
		assert.Equal(t, parent.BoardID, c.BoardID)
		assert.False(t, c.CreatedAt.Before(parent.CreatedAt))
	}
}

func TestSeederClean(t *testing.T) {
	db := setupDB(t)
	opts := smallOptions()

	_, err := NewSeeder(db, opts).Run()
	require.NoError(t, err)

	opts.Clean = true
	opts.RandomSeed = 7
	_, err = NewSeeder(db, opts).Run()
	require.NoError(t, err)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 3, users)
}

func TestSeederDryRun(t *testing.T) {
	opts := smallOptions()
	opts.DryRun = true

	summary, err := NewSeeder(nil, opts).Run()
	require.NoError(t, err)
	assert.Equal(t, 8, summary.Roots)
	assert.Equal(t, 16, summary.Replies)
}

func TestSeederRejectsInvalidPlan(t *testing.T) {
	_, err := NewSeeder(nil, Options{Boards: 2, DryRun: true}).Run()
	assert.Error(t, err)
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yml")
	require.NoError(t, os.WriteFile(path, []byte("users: 5\nboards: 10\nclean: true\n"), 0o600))

	opts, err := LoadPlan(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, opts.Users)
	assert.Equal(t, 10, opts.Boards)
	assert.True(t, opts.Clean)
	assert.Equal(t, DefaultOptions().RootsPerBoard, opts.RootsPerBoard)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("deleted_ratio: 2\n"), 0o600))
	_, err = LoadPlan(bad, DefaultOptions())
	assert.Error(t, err)

	_, err = LoadPlan(filepath.Join(dir, "missing.yml"), DefaultOptions())
	assert.Error(t, err)
}

func TestNotices(t *testing.T) {
	db := setupDB(t)
	root := &models.User{Username: "root", Email: "root@example.com", Password: "x", Name: "Root",
		Role: models.RoleAdmin, Status: models.UserStatusActive}
	require.NoError(t, db.Create(root).Error)

	created, err := Notices(db, root.ID)
	require.NoError(t, err)
	assert.Equal(t, len(BuiltInNotices), created)

	created, err = Notices(db, root.ID)
	require.NoError(t, err)
	assert.Zero(t, created)

	var notices int64
	require.NoError(t, db.Model(&models.Board{}).Where("category = ?", models.CategoryNotice).Count(&notices).Error)
	assert.EqualValues(t, len(BuiltInNotices), notices)
}
