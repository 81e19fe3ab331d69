package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/middleware"
)

const (
	UserKeyPrefix         = "user:%d"
	CommentTreeKeyPrefix  = "board:%d:comments:tree:%d:%d:%s:%s"
	CommentTreeKeyPattern = "board:%d:comments:tree:*"
	RevokedTokenKeyPrefix = "auth:revoked:%s"
)

const (
	UserTTL        = 5 * time.Minute
	CommentTreeTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// CommentTreeKey identifies one cached tree page. Every page parameter is part of the
// key so different orderings never share an entry.
func CommentTreeKey(boardID uint, page, size int, sort, direction string) string {
	return fmt.Sprintf(CommentTreeKeyPrefix, boardID, page, size, sort, direction)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateCommentTrees drops every cached tree page of a board.
func InvalidateCommentTrees(ctx context.Context, boardID uint) {
	if client == nil {
		return
	}
	pattern := fmt.Sprintf(CommentTreeKeyPattern, boardID)
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "Comment tree invalidation scan failed",
			slog.Uint64("board_id", uint64(boardID)), slog.String("error", err.Error()))
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
