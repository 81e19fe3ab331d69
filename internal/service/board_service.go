package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/repository"
	"agora/internal/validation"
)

type BoardService struct {
	boardRepo repository.BoardRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

type CreateBoardInput struct {
	AuthorID uint
	Title    string
	Content  string
	Category models.BoardCategory
	Status   models.BoardStatus
}

// UpdateBoardInput carries optional changes. When Version is set the update only
// succeeds if the stored board still has that version.
type UpdateBoardInput struct {
	ActorID  uint
	BoardID  uint
	Title    *string
	Content  *string
	Category *models.BoardCategory
	Status   *models.BoardStatus
	Version  *int64
}

func NewBoardService(boardRepo repository.BoardRepository, userRepo repository.UserRepository) *BoardService {
	return &BoardService{boardRepo: boardRepo, userRepo: userRepo, now: time.Now}
}

func (s *BoardService) CreateBoard(ctx context.Context, in CreateBoardInput) (*models.Board, error) {
	// Titles are plain text and kept verbatim. Bodies are HTML and pass the UGC policy.
	title := in.Title
	content := strings.TrimSpace(validation.SanitizeRich(in.Content))

	if err := validation.ValidateBoardTitle(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBoardContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBoardStatus(in.Status); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Status == models.BoardStatusDeleted {
		return nil, models.NewValidationError("a board cannot be created as DELETED")
	}

	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}

	board := models.NewBoard(author.ID, title, content, in.Category, in.Status)
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, err
	}
	board.Author = author
	return board, nil
}

func (s *BoardService) GetBoard(ctx context.Context, id uint) (*models.Board, error) {
	return s.boardRepo.GetByID(ctx, id)
}

// ListBoards lists every live board, or only PUBLIC boards of category when one is given.
func (s *BoardService) ListBoards(ctx context.Context, category models.BoardCategory, req paging.PageRequest) (paging.Page[models.BoardSummary], error) {
	if err := validation.ValidateCategory(category); err != nil {
		return paging.Page[models.BoardSummary]{}, models.NewValidationError(err.Error())
	}
	return s.summaries(req, func(req paging.PageRequest) ([]*models.Board, int64, error) {
		return s.boardRepo.List(ctx, category, req)
	})
}

func (s *BoardService) SearchBoards(ctx context.Context, keyword string, req paging.PageRequest) (paging.Page[models.BoardSummary], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return paging.Page[models.BoardSummary]{}, models.NewValidationError("keyword is required")
	}
	return s.summaries(req, func(req paging.PageRequest) ([]*models.Board, int64, error) {
		return s.boardRepo.SearchByTitle(ctx, keyword, req)
	})
}

func (s *BoardService) ListBoardsByAuthor(ctx context.Context, authorID uint, req paging.PageRequest) (paging.Page[models.BoardSummary], error) {
	return s.summaries(req, func(req paging.PageRequest) ([]*models.Board, int64, error) {
		return s.boardRepo.ListByAuthor(ctx, authorID, req)
	})
}

func (s *BoardService) summaries(req paging.PageRequest, list func(paging.PageRequest) ([]*models.Board, int64, error)) (paging.Page[models.BoardSummary], error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return paging.Page[models.BoardSummary]{}, err
	}
	boards, total, err := list(req)
	if err != nil {
		return paging.Page[models.BoardSummary]{}, err
	}
	out := make([]models.BoardSummary, 0, len(boards))
	for _, b := range boards {
		out = append(out, b.Summary())
	}
	return paging.NewPage(out, req, total), nil
}

func (s *BoardService) UpdateBoard(ctx context.Context, in UpdateBoardInput) (*models.Board, error) {
	board, actor, err := s.boardAndActor(ctx, in.BoardID, in.ActorID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwnerOrAdmin(board.AuthorID, actor, "You can only update your own boards"); err != nil {
		return nil, err
	}

	changes := models.BoardChanges{Category: in.Category, Status: in.Status}
	if in.Title != nil {
		if title := *in.Title; strings.TrimSpace(title) != "" {
			if err := validation.ValidateBoardTitle(title); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
			changes.Title = &title
		}
	}
	if in.Content != nil {
		content := strings.TrimSpace(validation.SanitizeRich(*in.Content))
		changes.Content = &content
	}
	if in.Category != nil {
		if err := validation.ValidateCategory(*in.Category); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if in.Status != nil {
		if err := validation.ValidateBoardStatus(*in.Status); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	if in.Version != nil {
		board.Version = *in.Version
	}
	board.Update(changes)
	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *BoardService) DeleteBoard(ctx context.Context, actorID, boardID uint) error {
	board, actor, err := s.boardAndActor(ctx, boardID, actorID)
	if err != nil {
		return err
	}
	if err := ensureOwnerOrAdmin(board.AuthorID, actor, "You can only delete your own boards"); err != nil {
		return err
	}
	return s.boardRepo.SoftDelete(ctx, board.ID, s.now())
}

// RestoreBoard brings a deleted board back as PRIVATE. Only administrators may restore.
func (s *BoardService) RestoreBoard(ctx context.Context, actorID, boardID uint) (*models.Board, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := ensureAdmin(actor); err != nil {
		return nil, err
	}
	board, err := s.boardRepo.GetAnyByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board.IsActive() {
		return board, nil
	}
	board.Restore()
	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *BoardService) IncreaseViewCount(ctx context.Context, boardID uint) error {
	return s.boardRepo.IncreaseViewCount(ctx, boardID)
}

func (s *BoardService) boardAndActor(ctx context.Context, boardID, actorID uint) (*models.Board, *models.User, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return board, actor, nil
}
