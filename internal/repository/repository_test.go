package repository

import (
	"context"
	"testing"
	"time"

	"basspress/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection so every query (including concurrent ones) sees the
	// same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Article{},
		&models.Comment{},
		&models.CommentRevision{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Role:     models.RoleUser,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestArticle(t *testing.T, db *gorm.DB, authorID uint, slug string, status models.ArticleStatus) *models.Article {
	t.Helper()
	article := &models.Article{
		Title:    "Title for " + slug,
		Slug:     slug,
		Content:  "body",
		AuthorID: authorID,
		Status:   status,
	}
	if status == models.ArticleStatusPublished {
		past := time.Now().Add(-time.Hour)
		article.PublishedAt = &past
	}
	require.NoError(t, db.Create(article).Error)
	return article
}

func createTestComment(t *testing.T, db *gorm.DB, articleID, authorID uint, parentID *uint, status models.CommentStatus) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		Content:   "a comment",
		ArticleID: articleID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Status:    status,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

func reloadComment(t *testing.T, db *gorm.DB, id uint) *models.Comment {
	t.Helper()
	var comment models.Comment
	require.NoError(t, db.First(&comment, id).Error)
	return &comment
}

func testCtx() context.Context { return context.Background() }
