package services

import (
	"testing"
	"time"

	"taskboard/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService opens a fresh in-memory database per test. A single
// connection is forced because each :memory: connection would otherwise see
// its own empty database.
func newTestService(t *testing.T) *TaskService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskApplication{},
		&models.Rating{},
		&models.TaskComment{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return NewTaskService(db)
}

func createUser(t *testing.T, s *TaskService, username string) *models.User {
	t.Helper()
	u := models.User{
		Username:        username,
		Password:        "x",
		PhoneNumber:     "+10000000" + username,
		RollNumber:      "R-" + username,
		GivingRating:    models.RatingSeed,
		AcceptingRating: models.RatingSeed,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &u
}

func createOpenTask(t *testing.T, s *TaskService, giverID uint) *models.Task {
	t.Helper()
	task, err := s.CreateTask(giverID, "Fix the printer", "Third floor printer is jammed", "coffee", time.Now().Add(48*time.Hour))
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func mustReload(t *testing.T, s *TaskService, taskID uint) *models.Task {
	t.Helper()
	task, err := s.GetTask(taskID)
	if err != nil {
		t.Fatalf("reload task %d: %v", taskID, err)
	}
	return task
}

func reloadUser(t *testing.T, s *TaskService, id uint) *models.User {
	t.Helper()
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &u
}
