// Command migrate manages the Agora database schema.
//
//	migrate up              apply pending SQL migrations
//	migrate auto            run GORM AutoMigrate regardless of DB_SCHEMA_MODE
//	migrate status          show the schema policy and every migration's state
//	migrate down <version>  revert the most recently applied migration
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"agora/internal/config"
	"agora/internal/database"

	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate <up|auto|status|down <version>>")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	command := args[0]
	switch command {
	case "up", "auto", "status", "down":
	default:
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch command {
	case "up":
		n, err := database.NewMigrator(db, database.Migrations()).Up(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("applied %d migration(s)\n", n)
	case "auto":
		if err := database.AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		fmt.Println("auto-migrate finished")
	case "status":
		return printStatus(ctx, db, cfg)
	case "down":
		if len(args) < 2 {
			return errUsage
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return err
		}
		fmt.Printf("rolled back %06d\n", version)
	}
	return nil
}

func printStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("mode=%s env=%s run_sql=%t run_auto=%t\n", status.Mode, status.Environment, status.RunSQL, status.RunAuto)
	if !status.RunSQL {
		return nil
	}

	appliedAt := make(map[int]time.Time, len(status.Applied))
	for _, a := range status.Applied {
		appliedAt[a.Version] = a.AppliedAt
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATE\tAPPLIED AT")
	for _, mig := range database.Migrations() {
		state, when := "pending", "-"
		if at, ok := appliedAt[mig.Version]; ok {
			state, when = "applied", at.UTC().Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(w, "%06d\t%s\t%s\t%s\n", mig.Version, mig.Name, state, when)
	}
	return w.Flush()
}
