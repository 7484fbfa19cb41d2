package repository

import (
	"fmt"
	"testing"

	"recipehub/internal/database"
	"recipehub/internal/models"

	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "hash"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func createPost(t *testing.T, db *gorm.DB, owner uint, tags ...models.Tag) *models.Post {
	t.Helper()
	p := &models.Post{UserID: owner, Title: fmt.Sprintf("post by %d", owner), Ingredients: "flour", Tags: tags}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func ptr(v float64) *float64 { return &v }
