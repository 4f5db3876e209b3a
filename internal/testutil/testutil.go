package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/strontium-cloud/strontium/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenTestDB returns an in-memory sqlite DB with migrations applied.
func OpenTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(models.All...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}

	return db
}

// CloseDB closes the underlying sql.DB if available.
func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// AssertCount asserts a count for the provided model using the supplied DB.
func AssertCount(tb testing.TB, db *gorm.DB, model any, expected int64) {
	tb.Helper()

	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	if count != expected {
		tb.Fatalf("expected %d records, got %d", expected, count)
	}
}
