package models

import "time"

const (
	// RatingTypeGiving scores a user's conduct as task giver (submitted by the acceptor).
	RatingTypeGiving = "GIVING"
	// RatingTypeAccepting scores a user's conduct as task acceptor (submitted by the giver).
	RatingTypeAccepting = "ACCEPTING"
)

type Rating struct {
	ID          uint      `gorm:"primaryKey" json:"rating_id"`
	TaskID      uint      `gorm:"not null;uniqueIndex:idx_task_rater" json:"task_id"`
	RaterID     uint      `gorm:"not null;uniqueIndex:idx_task_rater" json:"rater_id"`
	RatedID     uint      `gorm:"not null;index" json:"rated_id"`
	RatingValue int       `gorm:"not null" json:"rating_value"`
	RatingType  string    `gorm:"type:varchar(10);not null" json:"rating_type"`
	Comment     *string   `gorm:"size:500" json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}
