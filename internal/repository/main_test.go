package repository

import (
	"fmt"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB opens a private in-memory database with the full schema.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hash",
		Name:     username,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedBoard(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Board {
	t.Helper()
	b := models.NewBoard(author.ID, title, "content of "+title, "", "")
	require.NoError(t, db.Create(b).Error)
	return b
}

// seedComment inserts a comment with an explicit creation time so ordering is deterministic.
func seedComment(t *testing.T, db *gorm.DB, board *models.Board, author *models.User, parent *models.Comment, content string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{
		BoardID:   board.ID,
		AuthorID:  author.ID,
		Content:   content,
		Depth:     models.RootDepth,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if parent != nil {
		pid := parent.ID
		c.ParentID = &pid
		c.Depth = models.ReplyDepth
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
