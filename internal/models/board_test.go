package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard_Defaults(t *testing.T) {
	b := NewBoard(1, "title", "content", "", "")
	assert.Equal(t, CategoryFree, b.Category)
	assert.Equal(t, BoardStatusPublic, b.Status)
	assert.Nil(t, b.DeletedAt)

	b = NewBoard(1, "title", "content", CategoryQnA, BoardStatusPrivate)
	assert.Equal(t, CategoryQnA, b.Category)
	assert.Equal(t, BoardStatusPrivate, b.Status)
}

func TestBoard_UpdateIgnoresBlankValues(t *testing.T) {
	b := NewBoard(1, "title", "content", CategoryFree, BoardStatusPublic)
	blank := "  "
	empty := BoardCategory("")
	b.Update(BoardChanges{Title: &blank, Content: &blank, Category: &empty})

	assert.Equal(t, "title", b.Title)
	assert.Equal(t, "content", b.Content)
	assert.Equal(t, CategoryFree, b.Category)

	title := "new title"
	cat := CategoryNotice
	b.Update(BoardChanges{Title: &title, Category: &cat})
	assert.Equal(t, "new title", b.Title)
	assert.Equal(t, "content", b.Content)
	assert.Equal(t, CategoryNotice, b.Category)
}

func TestBoard_UpdateStatusAndDeletedAt(t *testing.T) {
	b := NewBoard(1, "title", "content", "", "")
	b.SoftDelete(time.Now())
	require.NotNil(t, b.DeletedAt)

	public := BoardStatusPublic
	b.Update(BoardChanges{Status: &public})
	assert.Equal(t, BoardStatusPublic, b.Status)
	assert.Nil(t, b.DeletedAt)

	deleted := BoardStatusDeleted
	b.Update(BoardChanges{Status: &deleted})
	assert.Equal(t, BoardStatusDeleted, b.Status)
	assert.Nil(t, b.DeletedAt, "status change through Update does not stamp deletedAt")
}

func TestBoard_SoftDeleteAndRestore(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := NewBoard(1, "title", "content", "", BoardStatusPublic)

	b.SoftDelete(now)
	assert.False(t, b.IsActive())
	require.NotNil(t, b.DeletedAt)
	assert.Equal(t, now, *b.DeletedAt)

	b.Restore()
	assert.Equal(t, BoardStatusPrivate, b.Status)
	assert.Nil(t, b.DeletedAt)
	assert.True(t, b.IsActive())

	// restoring a live board is a no-op
	b.Status = BoardStatusPublic
	b.Restore()
	assert.Equal(t, BoardStatusPublic, b.Status)
}

func TestBoard_SummaryAndViewCount(t *testing.T) {
	b := NewBoard(4, "title", "content", CategoryInfo, "")
	b.Author = &User{ID: 4, Name: "Ada"}
	b.IncreaseViewCount()
	b.IncreaseViewCount()

	s := b.Summary()
	assert.Equal(t, int64(2), s.ViewCount)
	assert.Equal(t, "Ada", s.AuthorName)
	assert.Equal(t, CategoryInfo, s.Category)

	b.Author = nil
	assert.Empty(t, b.Summary().AuthorName)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, CategoryQnA.Valid())
	assert.False(t, BoardCategory("MEMES").Valid())
	assert.True(t, BoardStatusDeleted.Valid())
	assert.False(t, BoardStatus("ARCHIVED").Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("ROOT").Valid())
	assert.True(t, UserStatusSuspended.Valid())
	assert.False(t, UserStatus("BANNED").Valid())
}

func TestUser_Profile(t *testing.T) {
	u := &User{Name: "old", Email: "old@example.com", Role: RoleUser, Status: UserStatusActive}
	u.UpdateProfile(" ", "new@example.com")
	assert.Equal(t, "old", u.Name)
	assert.Equal(t, "new@example.com", u.Email)
	assert.True(t, u.IsActive())
	assert.False(t, u.IsAdmin())

	u.ChangeRole(RoleAdmin)
	u.ChangeStatus(UserStatusSuspended)
	assert.True(t, u.IsAdmin())
	assert.False(t, u.IsActive())

	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
}
