// Package main provides account administration from the command line.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <username>    - Grant ROLE_ADMIN")
	fmt.Println("  admin demote <username>     - Revoke ROLE_ADMIN")
	fmt.Println("  admin suspend <username>    - Block sign-in")
	fmt.Println("  admin activate <username>   - Allow sign-in again")
	fmt.Println("  admin list-admins           - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	users := repository.NewUserRepository(db)
	ctx := context.Background()

	command := os.Args[1]
	if command == "list-admins" {
		listAdmins(ctx, users)
		return
	}
	if len(os.Args) < 3 {
		usage()
	}

	var apply func(*models.User) bool
	switch command {
	case "promote":
		apply = func(u *models.User) bool {
			if u.IsAdmin() {
				return false
			}
			u.ChangeRole(models.RoleAdmin)
			return true
		}
	case "demote":
		apply = func(u *models.User) bool {
			if !u.IsAdmin() {
				return false
			}
			u.ChangeRole(models.RoleUser)
			return true
		}
	case "suspend":
		apply = func(u *models.User) bool {
			if u.Status == models.UserStatusSuspended {
				return false
			}
			u.ChangeStatus(models.UserStatusSuspended)
			return true
		}
	case "activate":
		apply = func(u *models.User) bool {
			if u.IsActive() {
				return false
			}
			u.ChangeStatus(models.UserStatusActive)
			return true
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	changeUser(ctx, users, os.Args[2], command, apply)
}

func changeUser(ctx context.Context, users repository.UserRepository, username, command string, apply func(*models.User) bool) {
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		if models.HasCode(err, models.ErrUserNotFound) {
			fmt.Printf("User %s not found\n", username)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	if !apply(user) {
		fmt.Printf("User %s (ID: %d) needs no change for %s\n", user.Username, user.ID, command)
		return
	}
	if err := users.Update(ctx, user); err != nil {
		log.Fatalf("Failed to %s user: %v", command, err)
	}

	fmt.Printf("✅ %s %s (ID: %d): role=%s status=%s\n", command, user.Username, user.ID, user.Role, user.Status)
}

func listAdmins(ctx context.Context, users repository.UserRepository) {
	req := paging.PageRequest{Page: 0, Size: paging.MaxSize, Sort: paging.DefaultSort, Direction: paging.Asc}
	admins, total, err := users.List(ctx, repository.UserFilter{Role: models.RoleAdmin}, req)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if total == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s | Status: %s\n", admin.ID, admin.Username, admin.Email, admin.Status)
	}
	if total > int64(len(admins)) {
		fmt.Printf("... and %d more\n", total-int64(len(admins)))
	}
	fmt.Println("─────────────────────────────────────")
}
