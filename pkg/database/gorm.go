package database

import (
	"log"
	"os"
	"time"

	"ai-companion-core/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

// NewSQLiteDB opens (or creates) the on-device store and migrates the three
// persisted partitions.
func NewSQLiteDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	// A single writer is plenty for an on-device store, and it sidesteps
	// SQLITE_BUSY under concurrent fire-and-forget saves.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Session{},
		&model.Message{},
		&model.Wallet{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
