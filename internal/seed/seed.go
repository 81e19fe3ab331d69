package seed

import (
	"fmt"
	"log"
	"os"

	"agora/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	Users          int     `yaml:"users"`
	Boards         int     `yaml:"boards"`
	RootsPerBoard  int     `yaml:"roots_per_board"`
	RepliesPerRoot int     `yaml:"replies_per_root"`
	DeletedRatio   float64 `yaml:"deleted_ratio"`
	MaxDays        int     `yaml:"max_days"`
	RandomSeed     int64   `yaml:"random_seed"`
	Clean          bool    `yaml:"clean"`
	DryRun         bool    `yaml:"dry_run"`
	SkipBcrypt     bool    `yaml:"skip_bcrypt"`
}

// DefaultOptions is a small but browsable data set.
func DefaultOptions() Options {
	return Options{
		Users:          20,
		Boards:         40,
		RootsPerBoard:  8,
		RepliesPerRoot: 3,
		DeletedRatio:   0.05,
		MaxDays:        90,
	}
}

// LoadPlan reads a YAML seed plan. Keys missing from the file keep the values of base.
func LoadPlan(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read seed plan: %w", err)
	}
	opts := base
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return base, fmt.Errorf("parse seed plan %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}

// Validate rejects plans that cannot produce a consistent data set.
func (o Options) Validate() error {
	switch {
	case o.Users < 0, o.Boards < 0, o.RootsPerBoard < 0, o.RepliesPerRoot < 0:
		return fmt.Errorf("seed counts must not be negative")
	case o.Boards > 0 && o.Users == 0:
		return fmt.Errorf("boards need at least one user")
	case o.DeletedRatio < 0 || o.DeletedRatio > 1:
		return fmt.Errorf("deleted_ratio must be within [0,1]")
	}
	return nil
}

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Boards   int
	Roots    int
	Replies  int
	Deleted  int
	Password string
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder binds a seeder to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Run creates users, then boards spread over them, then roots and replies per board.
func (s *Seeder) Run() (*Summary, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	log.Printf("🌱 Seeding %d users, %d boards, %d roots/board, %d replies/root",
		s.opts.Users, s.opts.Boards, s.opts.RootsPerBoard, s.opts.RepliesPerRoot)

	if s.opts.Clean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	summary := &Summary{Password: DefaultPassword}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u, err := s.factory.BuildUser(func(u *models.User) {
			// Keep usernames unique even when the faker repeats itself.
			u.Username = fmt.Sprintf("%s%d", trimTo(u.Username, 15), i)
			u.Email = fmt.Sprintf("%s@example.com", u.Username)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build user: %w", err)
		}
		users = append(users, u)
	}
	if err := s.factory.CreateUsers(users); err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	summary.Users = len(users)
	log.Printf("✓ %d users created", summary.Users)

	boards := make([]*models.Board, 0, s.opts.Boards)
	for i := 0; i < s.opts.Boards; i++ {
		boards = append(boards, s.factory.BuildBoard(users[i%len(users)]))
	}
	if err := s.factory.CreateBoards(boards); err != nil {
		return nil, fmt.Errorf("failed to create boards: %w", err)
	}
	summary.Boards = len(boards)
	log.Printf("✓ %d boards created", summary.Boards)

	for _, board := range boards {
		roots := make([]*models.Comment, 0, s.opts.RootsPerBoard)
		for i := 0; i < s.opts.RootsPerBoard; i++ {
			root, err := s.factory.BuildRoot(board, s.pick(users))
			if err != nil {
				return nil, fmt.Errorf("failed to build comment: %w", err)
			}
			roots = append(roots, root)
		}
		if err := s.factory.CreateComments(roots); err != nil {
			return nil, fmt.Errorf("failed to create comments: %w", err)
		}

		replies := make([]*models.Comment, 0, len(roots)*s.opts.RepliesPerRoot)
		for _, root := range roots {
			for i := 0; i < s.opts.RepliesPerRoot; i++ {
				reply, err := s.factory.BuildReply(board, s.pick(users), root)
				if err != nil {
					return nil, fmt.Errorf("failed to build reply: %w", err)
				}
				replies = append(replies, reply)
			}
		}
		if err := s.factory.CreateComments(replies); err != nil {
			return nil, fmt.Errorf("failed to create replies: %w", err)
		}

		summary.Roots += len(roots)
		summary.Replies += len(replies)
		summary.Deleted += countDeleted(roots) + countDeleted(replies)
	}
	log.Printf("✓ %d root comments and %d replies created (%d deleted)",
		summary.Roots, summary.Replies, summary.Deleted)

	log.Println("🎉 Database seeding completed successfully!")
	return summary, nil
}

// ClearAll removes every board, comment and user row.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE comments, boards, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"comments", "boards", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) pick(users []*models.User) *models.User {
	return users[s.factory.rng.Intn(len(users))]
}

func countDeleted(comments []*models.Comment) int {
	n := 0
	for _, c := range comments {
		if c.IsDeleted {
			n++
		}
	}
	return n
}

func trimTo(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
