package seed

import (
	"errors"
	"fmt"

	"agora/internal/models"

	"gorm.io/gorm"
)

// BuiltInNotice is a permanent NOTICE board owned by the root administrator.
type BuiltInNotice struct {
	Title   string
	Content string
}

// BuiltInNotices defines the notices every installation starts with.
var BuiltInNotices = []BuiltInNotice{
	{Title: "Welcome to Agora", Content: "<p>Introduce yourself and say hello.</p>"},
	{Title: "Community guidelines", Content: "<p>Be kind. Stay on topic. Report abuse to an administrator.</p>"},
	{Title: "How replies work", Content: "<p>Reply to a comment to start a thread. Threads are one level deep.</p>"},
}

// Notices creates the built-in notice boards for author if they do not exist yet.
// It returns how many boards were created.
func Notices(db *gorm.DB, authorID uint) (int, error) {
	created := 0
	for _, item := range BuiltInNotices {
		err := db.Transaction(func(tx *gorm.DB) error {
			var existing models.Board
			err := tx.Where("title = ? AND category = ? AND author_id = ?", item.Title, models.CategoryNotice, authorID).
				First(&existing).Error
			switch {
			case err == nil:
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			board := models.NewBoard(authorID, item.Title, item.Content, models.CategoryNotice, models.BoardStatusPublic)
			if err := tx.Create(board).Error; err != nil {
				return err
			}
			created++
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("seed notice %q: %w", item.Title, err)
		}
	}
	return created, nil
}
