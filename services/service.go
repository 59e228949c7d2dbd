package services

import "gorm.io/gorm"

// TaskService owns every mutation of task status, application status and
// rating aggregates. Handlers never write those fields directly.
type TaskService struct {
	DB *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db}
}
