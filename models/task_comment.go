package models

import "time"

// TaskComment supports one level of threading via ParentCommentID.
// Withdrawal and removal reasons are recorded here as system-prefixed comments.
type TaskComment struct {
	ID              uint      `gorm:"primaryKey" json:"comment_id"`
	TaskID          uint      `gorm:"not null;index" json:"task_id"`
	UserID          uint      `gorm:"not null" json:"user_id"`
	CommentText     string    `gorm:"type:text;not null" json:"comment_text"`
	ParentCommentID *uint     `json:"parent_comment_id"`
	CreatedAt       time.Time `json:"created_at"`
}
