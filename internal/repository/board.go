package repository

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/paging"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var boardSortColumns = map[string]string{
	"createdAt": "created_at",
	"id":        "id",
	"title":     "title",
	"viewCount": "view_count",
}

const boardDefaultOrder = "created_at DESC"

// BoardRepository defines persistence operations for boards.
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	// GetByID returns a board that is not DELETED.
	GetByID(ctx context.Context, id uint) (*models.Board, error)
	// GetAnyByID returns a board whatever its status.
	GetAnyByID(ctx context.Context, id uint) (*models.Board, error)
	List(ctx context.Context, category models.BoardCategory, req paging.PageRequest) ([]*models.Board, int64, error)
	SearchByTitle(ctx context.Context, keyword string, req paging.PageRequest) ([]*models.Board, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, req paging.PageRequest) ([]*models.Board, int64, error)
	Update(ctx context.Context, board *models.Board) error
	SoftDelete(ctx context.Context, id uint, at time.Time) error
	IncreaseViewCount(ctx context.Context, id uint) error
}

type boardRepository struct {
	db    *gorm.DB
	log   *observability.RepoLogger
	trace *observability.Spans
}

// NewBoardRepository returns a new BoardRepository implementation.
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{
		db:    db,
		log:   observability.NewRepoLogger(tableBoards),
		trace: observability.DefaultSpans(),
	}
}

func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", models.BoardStatusDeleted)
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	defer observability.TrackQuery("create", tableBoards)()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(board).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "Board", board.ID)
	}
	r.log.LogCreate(ctx, map[string]any{"board_id": board.ID, "author_id": board.AuthorID})
	return nil
}

func (r *boardRepository) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	defer observability.TrackQuery("get_by_id", tableBoards)()
	var board models.Board
	err := readDB(r.db).WithContext(ctx).Scopes(notDeleted).Preload("Author").First(&board, id).Error
	if err != nil {
		return nil, translateError(err, "Board", id)
	}
	return &board, nil
}

func (r *boardRepository) GetAnyByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).Preload("Author").First(&board, id).Error; err != nil {
		return nil, translateError(err, "Board", id)
	}
	return &board, nil
}

// List returns every non-deleted board when category is empty, otherwise the PUBLIC
// boards of that category.
func (r *boardRepository) List(ctx context.Context, category models.BoardCategory, req paging.PageRequest) ([]*models.Board, int64, error) {
	scope := notDeleted
	if category != "" {
		scope = func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ? AND category = ?", models.BoardStatusPublic, category)
		}
	}
	return r.page(ctx, "list", scope, req)
}

func (r *boardRepository) SearchByTitle(ctx context.Context, keyword string, req paging.PageRequest) ([]*models.Board, int64, error) {
	return r.page(ctx, "search_by_title", func(db *gorm.DB) *gorm.DB {
		return notDeleted(db).Where("LOWER(title) LIKE ?", likePattern(keyword))
	}, req)
}

func (r *boardRepository) ListByAuthor(ctx context.Context, authorID uint, req paging.PageRequest) ([]*models.Board, int64, error) {
	return r.page(ctx, "list_by_author", func(db *gorm.DB) *gorm.DB {
		return notDeleted(db).Where("author_id = ?", authorID)
	}, req)
}

func (r *boardRepository) page(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB, req paging.PageRequest) ([]*models.Board, int64, error) {
	defer observability.TrackQuery(op, tableBoards)()
	ctx, span := r.trace.Repository(ctx, tableBoards, op)

	boards, total, err := findPage[models.Board](readDB(r.db).WithContext(ctx), pageQuery{
		scope:   scope,
		order:   []string{req.OrderBy(boardSortColumns, boardDefaultOrder), "id DESC"},
		preload: []string{"Author"},
	}, req)
	observability.Finish(span, err)
	if err != nil {
		r.log.LogError(ctx, err, op)
		return nil, 0, models.NewInternalError(err)
	}
	return boards, total, nil
}

// Update writes the mutable columns guarded by the optimistic version. A stale version
// (or a missing row) affects nothing and is reported as DB-409-INTEGRITY.
func (r *boardRepository) Update(ctx context.Context, board *models.Board) error {
	defer observability.TrackQuery("update", tableBoards)()
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Board{}).
		Where("id = ? AND version = ?", board.ID, board.Version).
		Updates(map[string]any{
			"title":      board.Title,
			"content":    board.Content,
			"category":   board.Category,
			"status":     board.Status,
			"deleted_at": board.DeletedAt,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return translateError(res.Error, "Board", board.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("The board was modified by another request. Reload and try again.")
	}
	board.Version++
	board.UpdatedAt = now
	r.log.LogUpdate(ctx, map[string]any{"board_id": board.ID, "version": board.Version})
	return nil
}

// SoftDelete marks a live board DELETED in one statement. Deleting a board that is
// missing or already deleted reports BOARD-404.
func (r *boardRepository) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	defer observability.TrackQuery("soft_delete", tableBoards)()
	res := r.db.WithContext(ctx).Model(&models.Board{}).
		Where("id = ? AND status <> ?", id, models.BoardStatusDeleted).
		Updates(map[string]any{
			"status":     models.BoardStatusDeleted,
			"deleted_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "soft_delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Board", id)
	}
	r.log.LogDelete(ctx, map[string]any{"board_id": id})
	return nil
}

func (r *boardRepository) IncreaseViewCount(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Board{}).
		Where("id = ? AND status <> ?", id, models.BoardStatusDeleted).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Board", id)
	}
	return nil
}
