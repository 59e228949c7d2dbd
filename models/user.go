package models

import "time"

// Reputation averages are seeded at 5.0; the seed acts as a permanent virtual
// first rating, so the stored counts only cover real ratings.
const RatingSeed = 5.0

type User struct {
	ID                   uint      `gorm:"primaryKey" json:"user_id"`
	Username             string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password             string    `gorm:"size:255;not null" json:"-"`
	PhoneNumber          string    `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	RollNumber           string    `gorm:"size:30;uniqueIndex;not null" json:"roll_number"`
	GivingRating         float64   `gorm:"type:decimal(4,2);default:5.0" json:"giving_rating"`
	AcceptingRating      float64   `gorm:"type:decimal(4,2);default:5.0" json:"accepting_rating"`
	GivingRatingCount    int       `gorm:"default:0" json:"giving_rating_count"`
	AcceptingRatingCount int       `gorm:"default:0" json:"accepting_rating_count"`
	Trophies             int       `gorm:"default:0" json:"trophies"`
	CreatedAt            time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
