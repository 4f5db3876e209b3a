package db

import (
	_ "github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/pkg/env"
	"github.com/strontium-cloud/strontium/pkg/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var conn *gorm.DB

// Connection returns the shared database handle, opening it on
// first use according to the configured database type.
func Connection() *gorm.DB {
	if conn != nil {
		return conn
	}

	var err error

	switch env.Variables().DatabaseType {
	case "postgres":
		conn, err = gorm.Open(
			postgres.Open(env.Variables().DatabaseDSN),
			&gorm.Config{},
		)
	case "sqlite":
		fallthrough
	default:
		conn, err = gorm.Open(
			sqlite.Open(env.Variables().DBPath),
			&gorm.Config{},
		)
	}

	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	return conn
}

// Migrate applies the schema for all persisted models.
func Migrate() error {
	if err := Connection().AutoMigrate(models.All...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}
