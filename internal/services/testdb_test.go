package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cobranzas_app_echo/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func createTestClient(t *testing.T, db *gorm.DB, name string) models.Client {
	t.Helper()

	client := models.Client{
		FullName: name,
		DNI:      fmt.Sprintf("dni-%s-%s", t.Name(), name),
		Phone:    "01112345678",
		IsActive: true,
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}
