package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskboard/database"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"

	"gorm.io/gorm"
)

// ProfileHandler returns the authenticated user together with task and
// application counters.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB

	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		log.Printf("[profile] DB error fetching user %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	var tasksGiven, tasksAccepted, tasksCompleted, applications int64
	db.Model(&models.Task{}).Where("giver_id = ?", uid).Count(&tasksGiven)
	db.Model(&models.Task{}).Where("acceptor_id = ?", uid).Count(&tasksAccepted)
	db.Model(&models.Task{}).Where("acceptor_id = ? AND status = ?", uid, models.TaskStatusCompleted).Count(&tasksCompleted)
	db.Model(&models.TaskApplication{}).Where("applicant_id = ?", uid).Count(&applications)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user": user,
			"stats": map[string]interface{}{
				"tasks_given":     tasksGiven,
				"tasks_accepted":  tasksAccepted,
				"tasks_completed": tasksCompleted,
				"applications":    applications,
			},
		},
	})
}

type UpdateProfileRequest struct {
	PhoneNumber string `json:"phone_number" validate:"phone"`
	RollNumber  string `json:"roll_number"`
}

// UpdateProfileHandler changes the mutable contact fields. Username, password
// and all reputation fields are not editable here.
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req UpdateProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.PhoneNumber); v != "" {
		updates["phone_number"] = v
	}
	if v := strings.TrimSpace(req.RollNumber); v != "" {
		updates["roll_number"] = v
	}
	if len(updates) == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Nothing to update"})
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", uid).Updates(updates).Error; err != nil {
		log.Printf("[profile] DB error updating user %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Phone number or roll number already in use"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile updated successfully"})
}
