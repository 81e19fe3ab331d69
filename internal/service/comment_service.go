package service

import (
	"context"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/repository"
)

// CommentTreePage is one page of root comments, each with its replies.
type CommentTreePage = paging.Page[models.CommentTreeNode]

type CommentService struct {
	commentRepo repository.CommentRepository
	boardRepo   repository.BoardRepository
	userRepo    repository.UserRepository
	treeTTL     time.Duration
}

type CreateCommentInput struct {
	BoardID  uint
	AuthorID uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	ActorID   uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	ActorID   uint
	CommentID uint
}

// NewCommentService builds the service. A positive treeTTL caches tree pages in redis.
func NewCommentService(
	commentRepo repository.CommentRepository,
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	treeTTL time.Duration,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		boardRepo:   boardRepo,
		userRepo:    userRepo,
		treeTTL:     treeTTL,
	}
}

// GetCommentTreePage returns one page of root comments of a board with all of their
// replies. It issues one root query and at most one reply query regardless of page size.
func (s *CommentService) GetCommentTreePage(ctx context.Context, boardID uint, req paging.PageRequest) (CommentTreePage, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return CommentTreePage{}, err
	}

	var page CommentTreePage
	key := cache.CommentTreeKey(boardID, req.Page, req.Size, req.Sort, req.Direction)
	err := cache.Aside(ctx, key, &page, s.treeTTL, func() error {
		built, err := s.buildTreePage(ctx, boardID, req)
		if err != nil {
			return err
		}
		page = built
		return nil
	})
	if err != nil {
		return CommentTreePage{}, err
	}
	return page, nil
}

func (s *CommentService) buildTreePage(ctx context.Context, boardID uint, req paging.PageRequest) (CommentTreePage, error) {
	var page CommentTreePage
	err := s.commentRepo.InReadTx(ctx, func(repo repository.CommentRepository) error {
		roots, total, err := repo.FindRootPage(ctx, boardID, req)
		if err != nil {
			return err
		}

		rootIDs := make([]uint, 0, len(roots))
		for _, root := range roots {
			rootIDs = append(rootIDs, root.ID)
		}

		groups := repository.GroupReplies(nil)
		if len(rootIDs) > 0 {
			if groups, err = repo.FindRepliesGroupedByParentIDs(ctx, rootIDs); err != nil {
				return err
			}
		}

		nodes := make([]models.CommentTreeNode, 0, len(roots))
		for _, root := range roots {
			nodes = append(nodes, models.NewCommentTreeNode(root, groups.Replies(root.ID)))
		}
		page = paging.NewPage(nodes, req, total)
		return nil
	})
	if err != nil {
		return CommentTreePage{}, err
	}
	return page, nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	board, err := s.boardRepo.GetByID(ctx, in.BoardID)
	if err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	// Comments are plain text and stored exactly as written; clients escape on render.
	var comment *models.Comment
	if in.ParentID == nil {
		comment, err = models.NewRootComment(board, author, in.Content)
	} else {
		var parent *models.Comment
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		comment, err = models.NewReplyComment(board, author, in.Content, parent)
	}
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidateCommentTrees(ctx, board.ID)

	view := comment.View()
	return &view, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.CommentView, error) {
	comment, err := s.authorizedComment(ctx, in.CommentID, in.ActorID, "You can only update your own comments")
	if err != nil {
		return nil, err
	}
	if err := comment.ChangeContent(in.Content); err != nil {
		return nil, err
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidateCommentTrees(ctx, comment.BoardID)

	view := comment.View()
	return &view, nil
}

// DeleteComment soft deletes the comment. The row and its replies stay in place.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.CommentView, error) {
	comment, err := s.authorizedComment(ctx, in.CommentID, in.ActorID, "You can only delete your own comments")
	if err != nil {
		return nil, err
	}
	comment.SoftDelete()
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidateCommentTrees(ctx, comment.BoardID)

	view := comment.View()
	return &view, nil
}

func (s *CommentService) LikeComment(ctx context.Context, commentID uint) (*models.CommentView, error) {
	return s.changeLikes(ctx, commentID, s.commentRepo.IncreaseLike)
}

// UnlikeComment decrements the counter; at zero it is left unchanged.
func (s *CommentService) UnlikeComment(ctx context.Context, commentID uint) (*models.CommentView, error) {
	return s.changeLikes(ctx, commentID, s.commentRepo.DecreaseLike)
}

func (s *CommentService) changeLikes(ctx context.Context, commentID uint, apply func(context.Context, uint) error) (*models.CommentView, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	if err := apply(ctx, commentID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	cache.InvalidateCommentTrees(ctx, comment.BoardID)

	view := comment.View()
	return &view, nil
}

func (s *CommentService) CountComments(ctx context.Context, boardID uint) (int64, error) {
	return s.commentRepo.CountByBoard(ctx, boardID)
}

func (s *CommentService) authorizedComment(ctx context.Context, commentID, actorID uint, message string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwnerOrAdmin(comment.AuthorID, actor, message); err != nil {
		return nil, err
	}
	return comment, nil
}
