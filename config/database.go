package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"localpulse/models"
)

// InitDB opens the postgres connection and migrates the schema. The caller
// owns the handle lifecycle; no lazy reconnects happen below this point.
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.Post{},
		&models.Tag{},
		&models.PostTag{},
		&models.Video{},
		&models.ModerationLog{},
		&models.PostView{},
		&models.FeaturedPost{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
