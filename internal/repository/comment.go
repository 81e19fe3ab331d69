package repository

import (
	"context"
	"database/sql"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/paging"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rootSortColumns is the allow-list for root pages. Any other sort field is dropped and
// the page falls back to rootDefaultOrder.
var rootSortColumns = map[string]string{
	"createdAt": "created_at",
	"id":        "id",
}

const rootDefaultOrder = "created_at ASC"

// ReplyGroups holds replies keyed by parent id. Parents keep the order in which they
// were first seen in the result set.
type ReplyGroups struct {
	order    []uint
	byParent map[uint][]*models.Comment
}

// GroupReplies groups an already ordered flat reply list by parent id.
func GroupReplies(replies []*models.Comment) *ReplyGroups {
	g := &ReplyGroups{byParent: make(map[uint][]*models.Comment)}
	for _, c := range replies {
		g.add(c)
	}
	return g
}

func (g *ReplyGroups) add(c *models.Comment) {
	if c.ParentID == nil {
		return
	}
	pid := *c.ParentID
	if _, seen := g.byParent[pid]; !seen {
		g.order = append(g.order, pid)
	}
	g.byParent[pid] = append(g.byParent[pid], c)
}

// ParentIDs returns the parent ids in first-seen order.
func (g *ReplyGroups) ParentIDs() []uint {
	return g.order
}

// Replies returns the replies of parentID, or nil when it has none.
func (g *ReplyGroups) Replies(parentID uint) []*models.Comment {
	return g.byParent[parentID]
}

func (g *ReplyGroups) Len() int {
	return len(g.order)
}

// CommentRepository defines persistence operations for comments, including the two
// queries behind a comment tree page.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	FindRootPage(ctx context.Context, boardID uint, req paging.PageRequest) ([]*models.Comment, int64, error)
	FindRepliesGroupedByParentIDs(ctx context.Context, parentIDs []uint) (*ReplyGroups, error)
	CountByBoard(ctx context.Context, boardID uint) (int64, error)
	IncreaseLike(ctx context.Context, id uint) error
	DecreaseLike(ctx context.Context, id uint) error
	// InReadTx runs fn against a repository bound to one read-only transaction, so
	// every read fn makes sees the same snapshot.
	InReadTx(ctx context.Context, fn func(CommentRepository) error) error
}

type commentRepository struct {
	db    *gorm.DB
	log   *observability.RepoLogger
	trace *observability.Spans

	// inTx is set on repositories handed out by InReadTx; their reads stay on db.
	inTx bool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{
		db:    db,
		log:   observability.NewRepoLogger(tableComments),
		trace: observability.DefaultSpans(),
	}
}

func (r *commentRepository) reader() *gorm.DB {
	if r.inTx {
		return r.db
	}
	return readDB(r.db)
}

func (r *commentRepository) InReadTx(ctx context.Context, fn func(CommentRepository) error) error {
	return r.reader().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&commentRepository{db: tx, log: r.log, trace: r.trace, inTx: true})
	}, &sql.TxOptions{ReadOnly: true})
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	defer observability.TrackQuery("create", tableComments)()
	ctx, span := r.trace.Repository(ctx, tableComments, "Create")
	defer func() { observability.Finish(span, err) }()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "Comment", comment.ID)
	}
	r.log.LogCreate(ctx, map[string]any{
		"comment_id": comment.ID,
		"board_id":   comment.BoardID,
		"depth":      comment.Depth,
	})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer observability.TrackQuery("get_by_id", tableComments)()
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translateError(err, "Comment", id)
	}
	return &comment, nil
}

// Update writes content and the deleted flag together.
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("update", tableComments)()
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]any{
			"content":    comment.Content,
			"is_deleted": comment.IsDeleted,
			"updated_at": now,
		})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return translateError(res.Error, "Comment", comment.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	comment.UpdatedAt = now
	r.log.LogUpdate(ctx, map[string]any{"comment_id": comment.ID, "deleted": comment.IsDeleted})
	return nil
}

// FindRootPage returns one page of root comments of a board and the total number of
// roots. Ties on the sort column are broken by id.
func (r *commentRepository) FindRootPage(ctx context.Context, boardID uint, req paging.PageRequest) (_ []*models.Comment, _ int64, err error) {
	defer observability.TrackQuery("find_root_page", tableComments)()
	ctx, span := r.trace.Repository(ctx, tableComments, "FindRootPage")
	defer func() { observability.Finish(span, err) }()

	roots, total, err := findPage[models.Comment](r.reader().WithContext(ctx), pageQuery{
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("board_id = ? AND parent_id IS NULL", boardID)
		},
		order:   []string{req.OrderBy(rootSortColumns, rootDefaultOrder), "id ASC"},
		preload: []string{"Author"},
	}, req)
	if err != nil {
		r.log.LogError(ctx, err, "find_root_page")
		return nil, 0, models.NewInternalError(err)
	}
	r.log.LogRead(ctx, map[string]any{"board_id": boardID, "roots": len(roots), "total": total})
	return roots, total, nil
}

// FindRepliesGroupedByParentIDs loads the replies of every given parent in one query.
// An empty id set returns empty groups without touching the database.
func (r *commentRepository) FindRepliesGroupedByParentIDs(ctx context.Context, parentIDs []uint) (_ *ReplyGroups, err error) {
	if len(parentIDs) == 0 {
		return GroupReplies(nil), nil
	}

	defer observability.TrackQuery("find_replies", tableComments)()
	ctx, span := r.trace.Repository(ctx, tableComments, "FindRepliesGroupedByParentIDs")
	defer func() { observability.Finish(span, err) }()

	var replies []*models.Comment
	err = r.reader().WithContext(ctx).
		Preload("Author").
		Where("parent_id IN ?", parentIDs).
		Order("parent_id ASC").Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	if err != nil {
		r.log.LogError(ctx, err, "find_replies")
		return nil, models.NewInternalError(err)
	}
	return GroupReplies(replies), nil
}

// CountByBoard counts every comment of a board, deleted ones included.
func (r *commentRepository) CountByBoard(ctx context.Context, boardID uint) (int64, error) {
	var count int64
	err := r.reader().WithContext(ctx).Model(&models.Comment{}).Where("board_id = ?", boardID).Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *commentRepository) IncreaseLike(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// DecreaseLike is floored at zero: a comment without likes is left untouched.
func (r *commentRepository) DecreaseLike(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND like_count > 0", id).
		UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
