package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the configured database: a postgres DSN when DB_URL is
// set, the local sqlite file otherwise. Migration happens in the storage
// package, which owns the schema.
func Connect(env Environment) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if env.DatabaseURL != "" {
		dialector = postgres.Open(env.DatabaseURL)
	} else {
		dialector = sqlite.Open(env.SQLitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
