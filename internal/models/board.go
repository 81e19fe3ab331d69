package models

import (
	"strings"
	"time"
)

// MaxBoardTitleLength is the maximum number of characters in a board title.
const MaxBoardTitleLength = 150

// BoardCategory groups boards for listing.
type BoardCategory string

const (
	CategoryFree   BoardCategory = "FREE"
	CategoryNotice BoardCategory = "NOTICE"
	CategoryQnA    BoardCategory = "QNA"
	CategoryInfo   BoardCategory = "INFO"
)

// Valid reports whether c is a known category.
func (c BoardCategory) Valid() bool {
	switch c {
	case CategoryFree, CategoryNotice, CategoryQnA, CategoryInfo:
		return true
	}
	return false
}

// BoardStatus is the visibility state of a board.
type BoardStatus string

const (
	BoardStatusPublic  BoardStatus = "PUBLIC"
	BoardStatusPrivate BoardStatus = "PRIVATE"
	BoardStatusDeleted BoardStatus = "DELETED"
)

// Valid reports whether s is a known status.
func (s BoardStatus) Valid() bool {
	switch s {
	case BoardStatusPublic, BoardStatusPrivate, BoardStatusDeleted:
		return true
	}
	return false
}

// Board is a post owned by a single author. AuthorID never changes after creation.
type Board struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	AuthorID  uint          `gorm:"not null;index:idx_boards_author_status,priority:1" json:"authorId"`
	Author    *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title     string        `gorm:"size:150;not null" json:"title"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Category  BoardCategory `gorm:"size:20;not null;default:FREE;index:idx_boards_status_category,priority:2" json:"category"`
	Status    BoardStatus   `gorm:"size:20;not null;default:PUBLIC;index:idx_boards_status_category,priority:1;index:idx_boards_author_status,priority:2" json:"status"`
	ViewCount int64         `gorm:"not null;default:0" json:"viewCount"`
	Version   int64         `gorm:"not null;default:0" json:"version"`
	DeletedAt *time.Time    `json:"deletedAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewBoard builds a board with default category and status applied.
func NewBoard(authorID uint, title, content string, category BoardCategory, status BoardStatus) *Board {
	b := &Board{
		AuthorID: authorID,
		Title:    title,
		Content:  content,
		Category: CategoryFree,
		Status:   BoardStatusPublic,
	}
	if category != "" {
		b.Category = category
	}
	if status != "" {
		b.Status = status
	}
	return b
}

// BoardChanges carries optional new values for Update. Nil and blank values are ignored.
type BoardChanges struct {
	Title    *string
	Content  *string
	Category *BoardCategory
	Status   *BoardStatus
}

// Update applies the non-empty changes. deletedAt is cleared whenever the resulting
// status is not DELETED; setting DELETED through Update does not stamp deletedAt.
func (b *Board) Update(ch BoardChanges) {
	if ch.Title != nil && strings.TrimSpace(*ch.Title) != "" {
		b.Title = *ch.Title
	}
	if ch.Content != nil && strings.TrimSpace(*ch.Content) != "" {
		b.Content = *ch.Content
	}
	if ch.Category != nil && *ch.Category != "" {
		b.Category = *ch.Category
	}
	if ch.Status != nil && *ch.Status != "" {
		b.Status = *ch.Status
	}
	if b.Status != BoardStatusDeleted {
		b.DeletedAt = nil
	}
}

func (b *Board) IncreaseViewCount() {
	b.ViewCount++
}

func (b *Board) SoftDelete(now time.Time) {
	b.Status = BoardStatusDeleted
	b.DeletedAt = &now
}

// Restore brings a deleted board back as PRIVATE. The visibility it had before deletion
// is not recorded, so the owner has to republish explicitly.
func (b *Board) Restore() {
	if b.Status == BoardStatusDeleted {
		b.Status = BoardStatusPrivate
		b.DeletedAt = nil
	}
}

func (b *Board) IsActive() bool {
	return b.Status != BoardStatusDeleted
}

// BoardSummary is the list projection of a board.
type BoardSummary struct {
	ID         uint          `json:"id"`
	Title      string        `json:"title"`
	Category   BoardCategory `json:"category"`
	Status     BoardStatus   `json:"status"`
	ViewCount  int64         `json:"viewCount"`
	AuthorID   uint          `json:"authorId"`
	AuthorName string        `json:"authorName"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Summary projects the board into its list form.
func (b *Board) Summary() BoardSummary {
	s := BoardSummary{
		ID:        b.ID,
		Title:     b.Title,
		Category:  b.Category,
		Status:    b.Status,
		ViewCount: b.ViewCount,
		AuthorID:  b.AuthorID,
		CreatedAt: b.CreatedAt,
	}
	if b.Author != nil {
		s.AuthorName = b.Author.Name
	}
	return s
}
