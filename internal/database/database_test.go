package database_test

import (
	"context"
	"testing"
	"time"

	"toeic-web/internal/database"
	"toeic-web/internal/database/dbtest"
	"toeic-web/internal/logger"
	"toeic-web/internal/models"
)

func TestMigrate_CreatesTables(t *testing.T) {
	db := dbtest.DB(t)
	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}

	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys pragma: expected 1, got %d", fk)
	}
}

func TestForeignKeysRestrictDelete(t *testing.T) {
	db := dbtest.DB(t)
	path := models.LearningPath{ID: "LT001", Name: "Path", Track: "TOEIC", Level: "550"}
	if err := db.Create(&path).Error; err != nil {
		t.Fatalf("create path: %v", err)
	}
	lesson := models.Lesson{ID: "BH001", PathID: "LT001", Name: "Lesson", DisplayOrder: 1, CreatedAt: time.Now()}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	if err := db.Delete(&models.LearningPath{}, "id = ?", "LT001").Error; err == nil {
		t.Fatalf("deleting a path with lessons should fail")
	}
	orphan := models.Lesson{ID: "BH002", PathID: "LT404", Name: "Orphan", DisplayOrder: 1, CreatedAt: time.Now()}
	if err := db.Create(&orphan).Error; err == nil {
		t.Fatalf("creating a lesson for a missing path should fail")
	}
}

func TestIsDuplicate(t *testing.T) {
	db := dbtest.DB(t)
	u := models.User{ID: "ND001", Email: "a@example.com", PasswordHash: "x", Role: models.RoleLearner, RegisteredAt: time.Now()}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := u
	err := db.Create(&dup).Error
	if err == nil {
		t.Fatalf("expected duplicate key error")
	}
	if !database.IsDuplicate(err) {
		t.Fatalf("IsDuplicate=false for %v", err)
	}
	if database.IsDuplicate(nil) {
		t.Fatalf("IsDuplicate(nil) should be false")
	}
}

func TestConnect_RejectsEmptyURL(t *testing.T) {
	if _, err := database.Connect(context.Background(), "", database.Options{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
