// Command main runs the database seeder for Agora.
package main

import (
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	plan := flag.String("plan", "", "YAML seed plan; explicit flags are ignored when set")
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	numBoards := flag.Int("boards", defaults.Boards, "Number of boards to create")
	roots := flag.Int("roots", defaults.RootsPerBoard, "Root comments per board")
	replies := flag.Int("replies", defaults.RepliesPerRoot, "Replies per root comment")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	fast := flag.Bool("fast", false, "Store the plain password instead of a bcrypt hash (local use only)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	opts := defaults
	opts.Users = *numUsers
	opts.Boards = *numBoards
	opts.RootsPerBoard = *roots
	opts.RepliesPerRoot = *replies
	opts.Clean = *shouldClean
	opts.DryRun = *dryRun
	opts.SkipBcrypt = *fast

	if *plan != "" {
		loaded, err := seed.LoadPlan(*plan, defaults)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		opts = loaded
		log.Printf("Applying seed plan: %s", *plan)
	}

	if opts.DryRun {
		if _, err := seed.NewSeeder(nil, opts).Run(); err != nil {
			log.Fatalf("❌ Dry run failed: %v", err)
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	summary, err := seed.NewSeeder(db, opts).Run()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d boards, %d comments.",
		summary.Users, summary.Boards, summary.Roots+summary.Replies)
	log.Printf("📧 All seeded users have the password: %s", summary.Password)
}
