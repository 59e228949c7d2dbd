package auth

import (
	"log"
	"net/http"

	"taskboard/database"
	"taskboard/models"
	"taskboard/utils"
)

// LeaderboardHandler ranks users by trophies, breaking ties on the rating
// averages. Capped at 50 rows.
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	err := database.DB.
		Select("id, username, trophies, giving_rating, accepting_rating, giving_rating_count, accepting_rating_count").
		Order("trophies DESC").
		Order("accepting_rating DESC").
		Order("giving_rating DESC").
		Limit(50).
		Find(&users).Error
	if err != nil {
		log.Printf("[leaderboard] DB error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	type entry struct {
		Rank                 int     `json:"rank"`
		UserID               uint    `json:"user_id"`
		Username             string  `json:"username"`
		Trophies             int     `json:"trophies"`
		GivingRating         float64 `json:"giving_rating"`
		AcceptingRating      float64 `json:"accepting_rating"`
		GivingRatingCount    int     `json:"giving_rating_count"`
		AcceptingRatingCount int     `json:"accepting_rating_count"`
	}
	out := make([]entry, 0, len(users))
	for i, u := range users {
		out = append(out, entry{
			Rank:                 i + 1,
			UserID:               u.ID,
			Username:             u.Username,
			Trophies:             u.Trophies,
			GivingRating:         u.GivingRating,
			AcceptingRating:      u.AcceptingRating,
			GivingRatingCount:    u.GivingRatingCount,
			AcceptingRatingCount: u.AcceptingRatingCount,
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: out})
}
