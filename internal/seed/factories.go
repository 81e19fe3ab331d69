// Package seed creates demo data for development and load testing. It is not used by
// the running server.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

var categories = []models.BoardCategory{
	models.CategoryFree, models.CategoryFree, models.CategoryQnA, models.CategoryInfo,
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// password hash shared by all generated users
	hashed string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. db may be nil when opts.DryRun is set.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seedValue := opts.RandomSeed
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}
	gofakeit.Seed(seedValue)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seedValue)), nextID: 1000}
}

func (f *Factory) password() (string, error) {
	if f.hashed != "" {
		return f.hashed, nil
	}
	if f.opts.SkipBcrypt {
		f.hashed = DefaultPassword
		return f.hashed, nil
	}
	hashed, err := service.HashPassword(DefaultPassword)
	if err != nil {
		return "", err
	}
	f.hashed = hashed
	return hashed, nil
}

// pastTime spreads CreatedAt over the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

// BuildUser constructs a user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := f.password()
	if err != nil {
		return nil, err
	}
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, gofakeit.Number(100, 999)))
	if len(username) > 20 {
		username = username[:20]
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password: hashed,
		Name:     first + " " + last,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// BuildBoard constructs a board for author without persisting it.
func (f *Factory) BuildBoard(author *models.User, overrides ...func(*models.Board)) *models.Board {
	title := strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(6)+3), ".")
	if len(title) > models.MaxBoardTitleLength {
		title = title[:models.MaxBoardTitleLength]
	}
	board := models.NewBoard(author.ID, title,
		fmt.Sprintf("<p>%s</p>", gofakeit.Paragraph(1, 3, 8, "</p><p>")),
		categories[f.rng.Intn(len(categories))], models.BoardStatusPublic)
	board.ViewCount = int64(f.rng.Intn(500))
	board.CreatedAt = f.pastTime()
	for _, override := range overrides {
		override(board)
	}
	return board
}

// BuildRoot constructs a root comment. Some roots are generated already deleted so the
// placeholder path shows up in demo data.
func (f *Factory) BuildRoot(board *models.Board, author *models.User) (*models.Comment, error) {
	c, err := models.NewRootComment(board, author, gofakeit.Sentence(f.rng.Intn(15)+3))
	if err != nil {
		return nil, err
	}
	f.decorate(c, board.CreatedAt)
	return c, nil
}

// BuildReply constructs a reply to root.
func (f *Factory) BuildReply(board *models.Board, author *models.User, root *models.Comment) (*models.Comment, error) {
	c, err := models.NewReplyComment(board, author, gofakeit.Sentence(f.rng.Intn(12)+2), root)
	if err != nil {
		return nil, err
	}
	f.decorate(c, root.CreatedAt)
	return c, nil
}

func (f *Factory) decorate(c *models.Comment, after time.Time) {
	c.LikeCount = int64(f.rng.Intn(20))
	if f.opts.DeletedRatio > 0 && f.rng.Float64() < f.opts.DeletedRatio {
		c.SoftDelete()
	}
	c.CreatedAt = after.Add(time.Duration(f.rng.Intn(72*60)+1) * time.Minute)
	c.UpdatedAt = c.CreatedAt
}

// CreateUsers persists users in one batch.
func (f *Factory) CreateUsers(users []*models.User) error {
	return createBatch(f, users, func(u *models.User, id uint) { u.ID = id })
}

// CreateBoards persists boards in one batch.
func (f *Factory) CreateBoards(boards []*models.Board) error {
	return createBatch(f, boards, func(b *models.Board, id uint) { b.ID = id })
}

// CreateComments persists comments in one batch. Parents must already have IDs.
func (f *Factory) CreateComments(comments []*models.Comment) error {
	return createBatch(f, comments, func(c *models.Comment, id uint) { c.ID = id })
}

func createBatch[T any](f *Factory, items []*T, setID func(*T, uint)) error {
	if len(items) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, item := range items {
			f.nextID++
			setID(item, f.nextID)
		}
		log.Printf("[dry-run] create %d %T rows (no DB write)", len(items), items[0])
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(items, 200).Error
}
