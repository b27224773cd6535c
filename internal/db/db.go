package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"profilingpoll/internal/config"
	"profilingpoll/internal/poll"
	"profilingpoll/internal/walkthrough"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate authored content models
	if err := db.AutoMigrate(
		&poll.Profile{},
		&poll.Poll{},
		&poll.Question{},
		&poll.Answer{},
		&poll.AnswerProfile{},
	); err != nil {
		return err
	}

	// Auto-migrate walkthrough models (incl. ledger join tables)
	if err := db.AutoMigrate(
		&walkthrough.Walkthrough{},
		&walkthrough.WalkthroughProfile{},
	); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
