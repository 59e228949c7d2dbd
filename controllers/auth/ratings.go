package auth

import (
	"log"
	"net/http"

	"taskboard/database"
	"taskboard/models"
	"taskboard/utils"
)

// MyRatingsHandler lists all ratings the authenticated user has received,
// enriched with the rater's username and the task title.
func MyRatingsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	var ratings []models.Rating
	if err := db.Where("rated_id = ?", uid).Order("created_at DESC, id DESC").Find(&ratings).Error; err != nil {
		log.Printf("[ratings] DB error listing ratings for user %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	raterIDs := make([]uint, 0, len(ratings))
	taskIDs := make([]uint, 0, len(ratings))
	for _, rt := range ratings {
		raterIDs = append(raterIDs, rt.RaterID)
		taskIDs = append(taskIDs, rt.TaskID)
	}

	raterNames := map[uint]string{}
	if len(raterIDs) > 0 {
		var users []models.User
		db.Select("id, username").Where("id IN ?", raterIDs).Find(&users)
		for _, u := range users {
			raterNames[u.ID] = u.Username
		}
	}
	taskTitles := map[uint]string{}
	if len(taskIDs) > 0 {
		var tasks []models.Task
		db.Select("id, title").Where("id IN ?", taskIDs).Find(&tasks)
		for _, t := range tasks {
			taskTitles[t.ID] = t.Title
		}
	}

	type ratingItem struct {
		models.Rating
		RaterUsername string `json:"rater_username"`
		TaskTitle     string `json:"task_title"`
	}
	out := make([]ratingItem, 0, len(ratings))
	for _, rt := range ratings {
		out = append(out, ratingItem{
			Rating:        rt,
			RaterUsername: raterNames[rt.RaterID],
			TaskTitle:     taskTitles[rt.TaskID],
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: out})
}
