// Command main runs the database seeder for Basspress.
package main

import (
	"flag"
	"log"

	"basspress/internal/config"
	"basspress/internal/database"
	"basspress/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numArticles := flag.Int("articles", 50, "Number of articles to create")
	numComments := flag.Int("comments", 200, "Number of comments to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	adminEmail := flag.String("admin-email", "admin@basspress.local", "Admin account email")
	adminPassword := flag.String("admin-password", "Admin123", "Admin account password")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d articles, %d comments, clean=%v",
		*numUsers, *numArticles, *numComments, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumArticles: *numArticles,
		NumComments: *numComments,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	admin, err := seed.EnsureAdmin(db, *adminEmail, *adminPassword)
	if err != nil {
		log.Fatalf("Admin account setup failed: %v", err)
	}
	log.Printf("Admin account ready: %s (id=%d)", admin.Email, admin.ID)
	log.Println("All done. Demo users share the password: Password123")
}
