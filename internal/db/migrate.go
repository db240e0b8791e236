package db

import (
	"fmt"
	"strings"

	"github.com/zulandar/processmap/internal/config"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every GORM model in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Section{},
		&models.Component{},
		&models.Metric{},
		&models.Todo{},
		&models.Issue{},
		&models.Idea{},
		&models.Comment{},
		&models.Connection{},
		&models.ActivityLog{},
		&models.Snapshot{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table in reverse dependency order.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop %T: %w", all[i], err)
		}
	}
	return nil
}

// Reset drops and re-creates all tables. Audit history is lost.
func Reset(db *gorm.DB) error {
	if err := DropAll(db); err != nil {
		return err
	}
	return AutoMigrate(db)
}

// SeedUsers upserts User rows from configuration, keyed by email.
func SeedUsers(db *gorm.DB, users []config.UserConfig) error {
	for _, uc := range users {
		user := models.User{
			Email: strings.ToLower(uc.Email),
			Name:  uc.Name,
			Role:  models.Role(uc.Role),
		}

		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "updated_at"}),
		}).Create(&user)
		if result.Error != nil {
			return fmt.Errorf("db: seed user %q: %w", uc.Email, result.Error)
		}
	}
	return nil
}
