// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"basspress/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumArticles int
	NumComments int
	ShouldClean bool
}

// categoryPresets is the default category tree for a fresh install.
var categoryPresets = []struct {
	Name     string
	Children []string
}{
	{Name: "Car Audio", Children: []string{"Subwoofers", "Amplifiers", "Head Units", "Speakers", "Wiring"}},
	{Name: "Music", Children: []string{"Bass Tracks", "Album Reviews", "Production"}},
	{Name: "Guides", Children: []string{"Install Guides", "Tuning", "Troubleshooting"}},
	{Name: "News", Children: nil},
}

// Run seeds the database with demo users, categories, articles and
// comments.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumArticles <= 0 {
		opts.NumArticles = 50
	}
	if opts.NumComments <= 0 {
		opts.NumComments = 200
	}

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}
	}

	f := NewFactory(db)

	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("seeded %d users", len(users))

	categories, err := f.CreateCategories()
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	log.Printf("seeded %d categories", len(categories))

	articles, err := f.CreateArticles(users, categories, opts.NumArticles)
	if err != nil {
		return fmt.Errorf("seeding articles: %w", err)
	}
	log.Printf("seeded %d articles", len(articles))

	comments, err := f.CreateComments(users, articles, opts.NumComments)
	if err != nil {
		return fmt.Errorf("seeding comments: %w", err)
	}
	log.Printf("seeded %d comments", len(comments))

	return nil
}

// Clean removes all seeded data. Order matters because of foreign keys.
func Clean(db *gorm.DB) error {
	tables := []string{
		"comment_revisions", "comments", "articles",
		"categories", "refresh_tokens", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnsureAdmin creates (or reuses) an admin account with a known password.
func EnsureAdmin(db *gorm.DB, email, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		Username: "admin",
		Email:    email,
		Password: string(hash),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// pastTime returns a timestamp up to maxDays in the past, for realistic
// created_at spreads.
func pastTime(r *rand.Rand, maxDays int) time.Time {
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	minsBack := r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

func init() {
	gofakeit.Seed(time.Now().UnixNano())
}
