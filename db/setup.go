package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Team{},
		&Player{},
		&Contract{},
		&HistoricalAuction{},
		&ProjectedStats{},
		&AuctionBid{},
		&Notification{},
		&User{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	// Team names are unique ignoring case.
	err = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_name_lower ON teams (LOWER(name))").Error
	if err != nil {
		return fmt.Errorf("creating team name index: %w", err)
	}
	return nil
}
