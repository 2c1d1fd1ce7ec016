// Package main provides account management utilities for Basspress.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"basspress/internal/config"
	"basspress/internal/database"
	"basspress/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin set-role <user_id> <role>   - Change a user's role")
		fmt.Println("  go run ./cmd/admin block <user_id>             - Block an account")
		fmt.Println("  go run ./cmd/admin unblock <user_id>           - Unblock an account")
		fmt.Println("  go run ./cmd/admin unlock <user_id>            - Clear a login lockout")
		fmt.Println("  go run ./cmd/admin list-staff                  - List authors, moderators and admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "set-role":
		if len(os.Args) < 4 {
			log.Fatal("usage: set-role <user_id> <role>")
		}
		role := models.Role(os.Args[3])
		if !models.ValidRole(role) {
			log.Fatalf("unknown role %q", os.Args[3])
		}
		user := mustFindUser(db, os.Args[2])
		if err := db.Model(user).Update("role", role).Error; err != nil {
			log.Fatalf("failed to update role: %v", err)
		}
		fmt.Printf("user %d (%s) is now %s\n", user.ID, user.Username, role)

	case "block":
		setActive(db, os.Args, false)

	case "unblock":
		setActive(db, os.Args, true)

	case "unlock":
		if len(os.Args) < 3 {
			log.Fatal("usage: unlock <user_id>")
		}
		user := mustFindUser(db, os.Args[2])
		err := db.Model(user).Updates(map[string]any{
			"login_attempts": 0,
			"lock_until":     nil,
		}).Error
		if err != nil {
			log.Fatalf("failed to unlock: %v", err)
		}
		fmt.Printf("user %d (%s) unlocked\n", user.ID, user.Username)

	case "list-staff":
		var staff []models.User
		err := db.Where("role IN ?", []models.Role{
			models.RoleAuthor, models.RoleModerator, models.RoleAdmin,
		}).Order("role, id").Find(&staff).Error
		if err != nil {
			log.Fatalf("failed to list staff: %v", err)
		}
		for _, u := range staff {
			fmt.Printf("%5d  %-10s  %-30s  active=%v\n", u.ID, u.Role, u.Email, u.IsActive)
		}

	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func setActive(db *gorm.DB, args []string, active bool) {
	if len(args) < 3 {
		log.Fatal("usage: block|unblock <user_id>")
	}
	user := mustFindUser(db, args[2])
	if err := db.Model(user).Update("is_active", active).Error; err != nil {
		log.Fatalf("failed to update account: %v", err)
	}
	fmt.Printf("user %d (%s) active=%v\n", user.ID, user.Username, active)
}

func mustFindUser(db *gorm.DB, rawID string) *models.User {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		log.Fatalf("invalid user id %q", rawID)
	}
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		log.Fatalf("user %d not found: %v", id, err)
	}
	return &user
}
