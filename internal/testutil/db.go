// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/reqdesk/backend/internal/models"
)

// NewDB opens an isolated in-memory sqlite database with the full schema
// migrated. Each call gets its own database; the single-connection pool
// keeps the shared-cache memory store alive for the test's duration.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Request{},
		&models.Attachment{},
		&models.Comment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedUser inserts a user row and returns it.
func SeedUser(t *testing.T, db *gorm.DB, fullname, role string) *models.User {
	t.Helper()
	u := &models.User{
		UserUUID:     uuid.NewString(),
		UserFullname: fullname,
		UserEmail:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		UserPhone:    "555-0100",
		UserRole:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCategory inserts a category row and returns it.
func SeedCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	c := &models.Category{CategoryName: name}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

// SeedRequest inserts a request row and returns it.
func SeedRequest(t *testing.T, db *gorm.DB, req *models.Request) *models.Request {
	t.Helper()
	if req.RequestStatus == "" {
		req.RequestStatus = models.StatusNew
	}
	if err := db.Create(req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return req
}
