package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxCommentLength is the maximum number of characters (runes) in a comment.
	MaxCommentLength = 2000
	// DeletedCommentPlaceholder replaces the content of soft-deleted comments in views.
	DeletedCommentPlaceholder = "[deleted comment]"

	RootDepth  = 0
	ReplyDepth = 1
)

// Comment is a root (depth 0) or a reply to a root (depth 1) on a single board.
// The database only enforces the depth range; parent consistency is checked by the
// constructors below.
type Comment struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	BoardID   uint     `gorm:"not null;index:idx_comments_board_parent_created,priority:1;index:idx_comments_board_depth_created,priority:1" json:"boardId"`
	Board     *Board   `gorm:"foreignKey:BoardID" json:"-"`
	AuthorID  uint     `gorm:"column:user_id;not null;index:idx_comments_user_created,priority:1" json:"authorId"`
	Author    *User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentID  *uint    `gorm:"index:idx_comments_board_parent_created,priority:2" json:"parentId"`
	Parent    *Comment `gorm:"foreignKey:ParentID" json:"-"`
	Content   string   `gorm:"type:text;not null" json:"content"`
	Depth     int      `gorm:"not null;default:0;check:chk_comments_depth,depth IN (0,1);index:idx_comments_board_depth_created,priority:2" json:"depth"`
	IsDeleted bool     `gorm:"not null;default:false" json:"deleted"`
	LikeCount int64    `gorm:"not null;default:0" json:"likeCount"`
	// CreatedAt closes both composite indexes so root pages and reply batches read in order.
	CreatedAt time.Time `gorm:"index:idx_comments_board_parent_created,priority:3;index:idx_comments_board_depth_created,priority:3;index:idx_comments_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrCommentContentEmpty.New()
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return ErrCommentContentTooLong.New()
	}
	return nil
}

func validateCommentRefs(board *Board, author *User, content string) error {
	if board == nil {
		return ErrCommentBoardRequired.New()
	}
	if author == nil {
		return ErrCommentAuthorRequired.New()
	}
	return validateCommentContent(content)
}

// NewRootComment builds a depth 0 comment on board.
func NewRootComment(board *Board, author *User, content string) (*Comment, error) {
	if err := validateCommentRefs(board, author, content); err != nil {
		return nil, err
	}
	return &Comment{
		BoardID:  board.ID,
		Board:    board,
		AuthorID: author.ID,
		Author:   author,
		Content:  content,
		Depth:    RootDepth,
	}, nil
}

// NewReplyComment builds a depth 1 reply. The parent must be a root on the same board.
func NewReplyComment(board *Board, author *User, content string, parent *Comment) (*Comment, error) {
	if err := validateCommentRefs(board, author, content); err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrCommentParentRequired.New()
	}
	if parent.Depth != RootDepth {
		return nil, ErrCommentInvalidDepth.New()
	}
	if parent.BoardID != board.ID {
		return nil, ErrCommentBoardMismatch.New()
	}
	parentID := parent.ID
	return &Comment{
		BoardID:  board.ID,
		Board:    board,
		AuthorID: author.ID,
		Author:   author,
		ParentID: &parentID,
		Parent:   parent,
		Content:  content,
		Depth:    ReplyDepth,
	}, nil
}

// IsRoot reports whether the comment has no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// ChangeContent replaces the content of a live comment.
func (c *Comment) ChangeContent(content string) error {
	if c.IsDeleted {
		return ErrCommentAlreadyDeleted.New()
	}
	if err := validateCommentContent(content); err != nil {
		return err
	}
	c.Content = content
	return nil
}

// SoftDelete flags the comment. The stored content is kept; views mask it.
func (c *Comment) SoftDelete() {
	c.IsDeleted = true
}

func (c *Comment) IncreaseLike() {
	c.LikeCount++
}

// DecreaseLike never takes the counter below zero.
func (c *Comment) DecreaseLike() {
	if c.LikeCount > 0 {
		c.LikeCount--
	}
}

// Equal compares by primary key. Unsaved comments are unequal to everything, themselves included.
func (c *Comment) Equal(other *Comment) bool {
	if c == nil || other == nil || c.ID == 0 {
		return false
	}
	return c.ID == other.ID
}

// CommentView is the presentation form of a comment. BoardID routes live events and is
// not part of the wire form.
type CommentView struct {
	ID         uint      `json:"id"`
	BoardID    uint      `json:"-"`
	Content    string    `json:"content"`
	ParentID   *uint     `json:"parentId"`
	Depth      int       `json:"depth"`
	Deleted    bool      `json:"deleted"`
	LikeCount  int64     `json:"likeCount"`
	AuthorID   uint      `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View projects the comment, masking its content when it has been deleted.
func (c *Comment) View() CommentView {
	v := CommentView{
		ID:        c.ID,
		BoardID:   c.BoardID,
		Content:   c.Content,
		ParentID:  c.ParentID,
		Depth:     c.Depth,
		Deleted:   c.IsDeleted,
		LikeCount: c.LikeCount,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Author != nil {
		v.AuthorName = c.Author.Username
	}
	if c.IsDeleted {
		v.Content = DeletedCommentPlaceholder
	}
	return v
}

// CommentTreeNode is a root comment with its replies in creation order.
type CommentTreeNode struct {
	Root    CommentView   `json:"root"`
	Replies []CommentView `json:"replies"`
}

// NewCommentTreeNode builds a node; a nil reply slice becomes an empty list.
func NewCommentTreeNode(root *Comment, replies []*Comment) CommentTreeNode {
	node := CommentTreeNode{
		Root:    root.View(),
		Replies: make([]CommentView, 0, len(replies)),
	}
	for _, r := range replies {
		node.Replies = append(node.Replies, r.View())
	}
	return node
}
