package tasks

import (
	"log"
	"net/http"

	"taskboard/database"
	"taskboard/models"
	"taskboard/utils"
)

// MyGivenTasksHandler lists tasks the authenticated user posted.
func MyGivenTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var list []models.Task
	if err := database.DB.Where("giver_id = ?", uid).Order("created_at DESC").Find(&list).Error; err != nil {
		log.Printf("[tasks] DB error listing given tasks for %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: list})
}

// MyAcceptedTasksHandler lists tasks where the user is or was the acceptor.
func MyAcceptedTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var list []models.Task
	if err := database.DB.Where("acceptor_id = ?", uid).Order("created_at DESC").Find(&list).Error; err != nil {
		log.Printf("[tasks] DB error listing accepted tasks for %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: attachGiverNames(list)})
}

// MyApplicationsHandler lists the user's applications joined with the task.
func MyApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var apps []models.TaskApplication
	if err := database.DB.Where("applicant_id = ?", uid).Order("applied_at DESC").Find(&apps).Error; err != nil {
		log.Printf("[tasks] DB error listing applications for %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	taskIDs := make([]uint, 0, len(apps))
	for _, a := range apps {
		taskIDs = append(taskIDs, a.TaskID)
	}
	taskByID := map[uint]models.Task{}
	if len(taskIDs) > 0 {
		var ts []models.Task
		database.DB.Where("id IN ?", taskIDs).Find(&ts)
		for _, t := range ts {
			taskByID[t.ID] = t
		}
	}

	type appWithTask struct {
		models.TaskApplication
		Task models.Task `json:"task"`
	}
	out := make([]appWithTask, 0, len(apps))
	for _, a := range apps {
		out = append(out, appWithTask{TaskApplication: a, Task: taskByID[a.TaskID]})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: out})
}

// MyWithdrawnRemovedHandler lists the user's exit records, i.e. tasks they
// withdrew from or were removed from after acceptance.
func MyWithdrawnRemovedHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var apps []models.TaskApplication
	err := database.DB.
		Where("applicant_id = ? AND status IN ?", uid, []string{models.ApplicationStatusWithdrawn, models.ApplicationStatusRemoved}).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		log.Printf("[tasks] DB error listing exit records for %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	taskIDs := make([]uint, 0, len(apps))
	for _, a := range apps {
		taskIDs = append(taskIDs, a.TaskID)
	}
	taskByID := map[uint]models.Task{}
	if len(taskIDs) > 0 {
		var ts []models.Task
		database.DB.Where("id IN ?", taskIDs).Find(&ts)
		for _, t := range ts {
			taskByID[t.ID] = t
		}
	}

	type exitWithTask struct {
		models.TaskApplication
		Task models.Task `json:"task"`
	}
	out := make([]exitWithTask, 0, len(apps))
	for _, a := range apps {
		out = append(out, exitWithTask{TaskApplication: a, Task: taskByID[a.TaskID]})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: out})
}
