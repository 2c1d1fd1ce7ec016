package database

import (
	"gorm.io/gorm"

	"basspress/internal/models"
)

// migrationModels is the single registry of models AutoMigrate manages.
// Order matters: referenced tables first.
func migrationModels() []any {
	return []any{
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Article{},
		&models.Comment{},
		&models.CommentRevision{},
	}
}

// Migrate runs AutoMigrate over the model registry.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(migrationModels()...)
}

// MigrationStatus reports, per managed table, whether it currently exists.
func MigrationStatus(db *gorm.DB) map[string]bool {
	status := make(map[string]bool)
	for _, m := range migrationModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			continue
		}
		status[stmt.Schema.Table] = db.Migrator().HasTable(m)
	}
	return status
}
