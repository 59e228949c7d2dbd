package models

import "time"

const (
	TaskStatusOpen       = "OPEN"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
	TaskStatusCancelled  = "CANCELLED"
)

// Task is never physically deleted; cancellation is a status change.
// AcceptorID is set on acceptance and cleared only when the task reopens
// (withdrawal or removal). A task completed or cancelled while in progress
// keeps its acceptor as history for rating eligibility.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"task_id"`
	GiverID     uint      `gorm:"not null;index" json:"giver_id"`
	AcceptorID  *uint     `gorm:"index" json:"acceptor_id"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Reward      string    `gorm:"size:150;not null" json:"reward"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	Status      string    `gorm:"type:varchar(20);default:'OPEN';not null;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
