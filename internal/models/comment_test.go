package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBoard(id uint) *Board {
	return &Board{ID: id, AuthorID: 1, Title: "t", Content: "c", Category: CategoryFree, Status: BoardStatusPublic}
}

func fixtureUser(id uint) *User {
	return &User{ID: id, Username: "writer", Name: "Writer Name", Role: RoleUser, Status: UserStatusActive}
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	require.True(t, HasCode(err, code), "expected %s, got %v", code.Code, err)
}

func TestNewRootComment(t *testing.T) {
	board := fixtureBoard(7)
	author := fixtureUser(3)

	c, err := NewRootComment(board, author, "hello")
	require.NoError(t, err)
	assert.Equal(t, RootDepth, c.Depth)
	assert.Nil(t, c.ParentID)
	assert.True(t, c.IsRoot())
	assert.Equal(t, uint(7), c.BoardID)
	assert.Equal(t, uint(3), c.AuthorID)
	assert.False(t, c.IsDeleted)
	assert.Zero(t, c.LikeCount)
}

func TestNewRootComment_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		board   *Board
		author  *User
		content string
		want    ErrorCode
	}{
		{"board checked before everything", nil, nil, "", ErrCommentBoardRequired},
		{"author checked before content", fixtureBoard(1), nil, "", ErrCommentAuthorRequired},
		{"blank content", fixtureBoard(1), fixtureUser(1), "   \t\n", ErrCommentContentEmpty},
		{"content too long", fixtureBoard(1), fixtureUser(1), strings.Repeat("a", MaxCommentLength+1), ErrCommentContentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRootComment(tt.board, tt.author, tt.content)
			requireCode(t, err, tt.want)
		})
	}
}

func TestNewRootComment_LengthCountsCharacters(t *testing.T) {
	// 2000 multi-byte characters are within the limit.
	content := strings.Repeat("가", MaxCommentLength)
	_, err := NewRootComment(fixtureBoard(1), fixtureUser(1), content)
	require.NoError(t, err)

	_, err = NewRootComment(fixtureBoard(1), fixtureUser(1), content+"가")
	requireCode(t, err, ErrCommentContentTooLong)
}

func TestNewReplyComment(t *testing.T) {
	board := fixtureBoard(7)
	author := fixtureUser(3)
	root, err := NewRootComment(board, author, "root")
	require.NoError(t, err)
	root.ID = 11

	reply, err := NewReplyComment(board, author, "reply", root)
	require.NoError(t, err)
	assert.Equal(t, ReplyDepth, reply.Depth)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, uint(11), *reply.ParentID)
	assert.False(t, reply.IsRoot())
}

func TestNewReplyComment_Rules(t *testing.T) {
	board := fixtureBoard(7)
	author := fixtureUser(3)
	root := &Comment{ID: 11, BoardID: 7, Depth: RootDepth}
	reply := &Comment{ID: 12, BoardID: 7, Depth: ReplyDepth, ParentID: &root.ID}
	otherBoardRoot := &Comment{ID: 13, BoardID: 8, Depth: RootDepth}

	t.Run("content checks run before parent checks", func(t *testing.T) {
		_, err := NewReplyComment(board, author, "", nil)
		requireCode(t, err, ErrCommentContentEmpty)
	})
	t.Run("parent required", func(t *testing.T) {
		_, err := NewReplyComment(board, author, "x", nil)
		requireCode(t, err, ErrCommentParentRequired)
	})
	t.Run("reply to reply", func(t *testing.T) {
		_, err := NewReplyComment(board, author, "x", reply)
		requireCode(t, err, ErrCommentInvalidDepth)
	})
	t.Run("depth checked before board", func(t *testing.T) {
		foreignReply := &Comment{ID: 14, BoardID: 8, Depth: ReplyDepth}
		_, err := NewReplyComment(board, author, "x", foreignReply)
		requireCode(t, err, ErrCommentInvalidDepth)
	})
	t.Run("parent on another board", func(t *testing.T) {
		_, err := NewReplyComment(board, author, "x", otherBoardRoot)
		requireCode(t, err, ErrCommentBoardMismatch)
	})
}

func TestComment_ChangeContent(t *testing.T) {
	c := &Comment{ID: 1, Content: "before"}

	require.NoError(t, c.ChangeContent("after"))
	assert.Equal(t, "after", c.Content)

	requireCode(t, c.ChangeContent(" "), ErrCommentContentEmpty)
	requireCode(t, c.ChangeContent(strings.Repeat("b", MaxCommentLength+1)), ErrCommentContentTooLong)
	assert.Equal(t, "after", c.Content)

	c.SoftDelete()
	// deleted wins over an otherwise invalid value
	requireCode(t, c.ChangeContent(""), ErrCommentAlreadyDeleted)
}

func TestComment_SoftDeleteIsIdempotent(t *testing.T) {
	c := &Comment{ID: 1, Content: "keep me"}
	c.SoftDelete()
	c.SoftDelete()
	assert.True(t, c.IsDeleted)
	assert.Equal(t, "keep me", c.Content)
}

func TestComment_LikeCounter(t *testing.T) {
	c := &Comment{}
	c.DecreaseLike()
	assert.Zero(t, c.LikeCount)

	c.IncreaseLike()
	c.IncreaseLike()
	c.DecreaseLike()
	assert.Equal(t, int64(1), c.LikeCount)
}

func TestComment_Equal(t *testing.T) {
	a := &Comment{ID: 5}
	b := &Comment{ID: 5, Content: "different"}
	unsaved := &Comment{}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(&Comment{ID: 6}))
	assert.False(t, unsaved.Equal(unsaved))
	assert.False(t, unsaved.Equal(&Comment{}))
	assert.False(t, a.Equal(nil))
}

func TestComment_ViewMasksDeletedContent(t *testing.T) {
	c := &Comment{ID: 2, Content: "secret", AuthorID: 3, Author: fixtureUser(3), LikeCount: 4}
	v := c.View()
	assert.Equal(t, "secret", v.Content)
	assert.Equal(t, "writer", v.AuthorName)
	assert.False(t, v.Deleted)

	c.SoftDelete()
	v = c.View()
	assert.Equal(t, DeletedCommentPlaceholder, v.Content)
	assert.True(t, v.Deleted)
	assert.Equal(t, uint(3), v.AuthorID)
	assert.Equal(t, int64(4), v.LikeCount)
}

func TestNewCommentTreeNode(t *testing.T) {
	root := &Comment{ID: 1}
	node := NewCommentTreeNode(root, nil)
	assert.NotNil(t, node.Replies)
	assert.Empty(t, node.Replies)

	rootID := root.ID
	deleted := &Comment{ID: 3, ParentID: &rootID, Depth: ReplyDepth, Content: "gone", IsDeleted: true}
	live := &Comment{ID: 4, ParentID: &rootID, Depth: ReplyDepth, Content: "here"}
	node = NewCommentTreeNode(root, []*Comment{deleted, live})
	require.Len(t, node.Replies, 2)
	assert.Equal(t, uint(3), node.Replies[0].ID)
	assert.Equal(t, DeletedCommentPlaceholder, node.Replies[0].Content)
	assert.Equal(t, "here", node.Replies[1].Content)
}
