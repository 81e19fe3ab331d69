package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret-that-is-long-enough-for-hs256"

func init() {
	service.PasswordCost = bcrypt.MinCost
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                    "0",
		Env:                     "test",
		JWTSecret:               testJWTSecret,
		JWTTTLHours:             1,
		AllowedOrigins:          "*",
		CommentTreeCacheSeconds: 0,
	}
}

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newTestServer builds a server on an in-memory database. rdb may be nil.
func newTestServer(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(), setupSQLiteDB(t), rdb)
	require.NoError(t, err)
	return s, s.App()
}

// envelope mirrors models.CommonAPIResponse with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst), "data: %s", env.Data)
}

// createUser registers a user through the service and returns it with a signed token.
func createUser(t *testing.T, s *Server, username string, role models.UserRole) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	user, err := s.userService.CreateUser(ctx, service.CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "Passw0rd!23",
		Name:     username,
	})
	require.NoError(t, err)
	if role == models.RoleAdmin {
		user.ChangeRole(models.RoleAdmin)
		require.NoError(t, s.userRepo.Update(ctx, user))
	}
	token, _, err := s.authService.IssueToken(user)
	require.NoError(t, err)
	return user, token
}

func createBoard(t *testing.T, s *Server, author *models.User, title string) *models.Board {
	t.Helper()
	board, err := s.boardService.CreateBoard(context.Background(), service.CreateBoardInput{
		AuthorID: author.ID,
		Title:    title,
		Content:  "content of " + title,
	})
	require.NoError(t, err)
	return board
}

func createComment(t *testing.T, s *Server, board *models.Board, author *models.User, parent *models.CommentView, content string) *models.CommentView {
	t.Helper()
	in := service.CreateCommentInput{BoardID: board.ID, AuthorID: author.ID, Content: content}
	if parent != nil {
		pid := parent.ID
		in.ParentID = &pid
	}
	view, err := s.commentService.CreateComment(context.Background(), in)
	require.NoError(t, err)
	return view
}
