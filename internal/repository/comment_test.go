package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/paging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentFixture struct {
	board                  *models.Board
	author                 *models.User
	root1, root2           *models.Comment
	reply3, reply4, reply5 *models.Comment
}

// seedThread builds two roots with replies 3,4 under the first root and 5 under the second.
func seedThread(t *testing.T, repo CommentRepository) commentFixture {
	t.Helper()
	cr := repo.(*commentRepository)
	db := cr.db

	author := seedUser(t, db, "alice")
	board := seedBoard(t, db, author, "thread")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	f := commentFixture{board: board, author: author}
	f.root1 = seedComment(t, db, board, author, nil, "root 1", base)
	f.root2 = seedComment(t, db, board, author, nil, "root 2", base.Add(time.Minute))
	f.reply3 = seedComment(t, db, board, author, f.root1, "reply 3", base.Add(2*time.Minute))
	f.reply4 = seedComment(t, db, board, author, f.root1, "reply 4", base.Add(3*time.Minute))
	f.reply5 = seedComment(t, db, board, author, f.root2, "reply 5", base.Add(4*time.Minute))
	return f
}

func ids(comments []*models.Comment) []uint {
	out := make([]uint, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return out
}

func TestCommentRepository_FindRootPage(t *testing.T) {
	repo := NewCommentRepository(setupSQLiteDB(t))
	f := seedThread(t, repo)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       paging.PageRequest
		wantIDs   []uint
		wantTotal int64
	}{
		{
			name:      "created ascending",
			req:       paging.PageRequest{Page: 0, Size: 10, Sort: "createdAt", Direction: paging.Asc},
			wantIDs:   []uint{f.root1.ID, f.root2.ID},
			wantTotal: 2,
		},
		{
			name:      "id descending",
			req:       paging.PageRequest{Page: 0, Size: 10, Sort: "id", Direction: paging.Desc},
			wantIDs:   []uint{f.root2.ID, f.root1.ID},
			wantTotal: 2,
		},
		{
			name:      "unknown sort falls back to created ascending",
			req:       paging.PageRequest{Page: 0, Size: 10, Sort: "likeCount", Direction: paging.Desc},
			wantIDs:   []uint{f.root1.ID, f.root2.ID},
			wantTotal: 2,
		},
		{
			name:      "second page",
			req:       paging.PageRequest{Page: 1, Size: 1, Sort: "createdAt", Direction: paging.Asc},
			wantIDs:   []uint{f.root2.ID},
			wantTotal: 2,
		},
		{
			name:      "past the end",
			req:       paging.PageRequest{Page: 5, Size: 10, Sort: "createdAt", Direction: paging.Asc},
			wantIDs:   []uint{},
			wantTotal: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roots, total, err := repo.FindRootPage(ctx, f.board.ID, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantIDs, ids(roots))
			for _, root := range roots {
				assert.Nil(t, root.ParentID)
				require.NotNil(t, root.Author)
				assert.Equal(t, "alice", root.Author.Username)
			}
		})
	}

	roots, total, err := repo.FindRootPage(ctx, f.board.ID+100, paging.DefaultRequest())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}

func TestCommentRepository_FindRepliesGroupedByParentIDs(t *testing.T) {
	repo := NewCommentRepository(setupSQLiteDB(t))
	f := seedThread(t, repo)
	ctx := context.Background()

	groups, err := repo.FindRepliesGroupedByParentIDs(ctx, []uint{f.root2.ID, f.root1.ID})
	require.NoError(t, err)

	assert.Equal(t, 2, groups.Len())
	assert.Equal(t, []uint{f.root1.ID, f.root2.ID}, groups.ParentIDs(), "parents ordered as returned by parent_id ASC")
	assert.Equal(t, []uint{f.reply3.ID, f.reply4.ID}, ids(groups.Replies(f.root1.ID)))
	assert.Equal(t, []uint{f.reply5.ID}, ids(groups.Replies(f.root2.ID)))
	assert.Nil(t, groups.Replies(9999))
	for _, r := range groups.Replies(f.root1.ID) {
		require.NotNil(t, r.Author)
		assert.Equal(t, models.ReplyDepth, r.Depth)
	}

	groups, err = repo.FindRepliesGroupedByParentIDs(ctx, []uint{f.reply3.ID})
	require.NoError(t, err)
	assert.Zero(t, groups.Len(), "replies have no children")
}

func TestCommentRepository_InReadTx(t *testing.T) {
	repo := NewCommentRepository(setupSQLiteDB(t))
	f := seedThread(t, repo)
	ctx := context.Background()

	var roots []*models.Comment
	var groups *ReplyGroups
	err := repo.InReadTx(ctx, func(tx CommentRepository) error {
		var err error
		if roots, _, err = tx.FindRootPage(ctx, f.board.ID, paging.PageRequest{Size: 10}.Normalize()); err != nil {
			return err
		}
		groups, err = tx.FindRepliesGroupedByParentIDs(ctx, ids(roots))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.root1.ID, f.root2.ID}, ids(roots))
	assert.Equal(t, 2, groups.Len())

	boom := errors.New("boom")
	err = repo.InReadTx(ctx, func(CommentRepository) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestCommentRepository_FindRepliesGroupedByParentIDs_EmptyInputRunsNoQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	groups, err := repo.FindRepliesGroupedByParentIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, groups.Len())
	assert.Empty(t, groups.ParentIDs())

	groups, err = repo.FindRepliesGroupedByParentIDs(context.Background(), []uint{})
	require.NoError(t, err)
	assert.Zero(t, groups.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_QueryShapes(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comments" WHERE board_id = $1 AND parent_id IS NULL`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE board_id = $1 AND parent_id IS NULL ORDER BY created_at ASC,id ASC LIMIT $2`)).
		WithArgs(3, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "user_id", "content", "depth"}).
			AddRow(11, 3, 7, "root", 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(7, "bob"))

	roots, total, err := repo.FindRootPage(ctx, 3, paging.PageRequest{Page: 0, Size: 10, Sort: "bogus", Direction: paging.Desc})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, roots, 1)
	assert.Equal(t, "bob", roots[0].Author.Username)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE parent_id IN ($1,$2) ORDER BY parent_id ASC,created_at ASC,id ASC`)).
		WithArgs(11, 12).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "user_id", "parent_id", "content", "depth"}).
			AddRow(21, 3, 7, 11, "reply", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(7, "bob"))

	groups, err := repo.FindRepliesGroupedByParentIDs(ctx, []uint{11, 12})
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, groups.ParentIDs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CreateAndGet(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "carol")
	board := seedBoard(t, db, author, "b")

	root, err := models.NewRootComment(board, author, "hello")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, root))
	require.NotZero(t, root.ID)

	reply, err := models.NewReplyComment(board, author, "hi back", root)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, reply))

	got, err := repo.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *got.ParentID)
	assert.Equal(t, models.ReplyDepth, got.Depth)
	require.NotNil(t, got.Author)
	assert.Equal(t, "carol", got.Author.Username)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users, "associations are not re-inserted")

	count, err := repo.CountByBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, models.HasCode(err, models.ErrCommentNotFound))
}

func TestCommentRepository_UpdateAndLikes(t *testing.T) {
	repo := NewCommentRepository(setupSQLiteDB(t))
	f := seedThread(t, repo)
	ctx := context.Background()

	c := f.reply3
	require.NoError(t, c.ChangeContent("edited"))
	c.SoftDelete()
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.True(t, got.IsDeleted)

	missing := &models.Comment{ID: 9999, Content: "x"}
	assert.True(t, models.HasCode(repo.Update(ctx, missing), models.ErrCommentNotFound))

	require.NoError(t, repo.IncreaseLike(ctx, f.root1.ID))
	require.NoError(t, repo.IncreaseLike(ctx, f.root1.ID))
	require.NoError(t, repo.DecreaseLike(ctx, f.root1.ID))
	require.NoError(t, repo.DecreaseLike(ctx, f.root1.ID))
	require.NoError(t, repo.DecreaseLike(ctx, f.root1.ID), "decrement at zero is a no-op")

	got, err = repo.GetByID(ctx, f.root1.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)

	assert.True(t, models.HasCode(repo.IncreaseLike(ctx, 9999), models.ErrCommentNotFound))
}
