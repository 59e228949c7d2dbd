package tasks

import (
	"log"
	"net/http"
	"strings"
	"time"

	"taskboard/database"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"
)

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Reward      string `json:"reward" validate:"required"`
	Deadline    string `json:"deadline" validate:"required"`
}

func parseDeadline(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CreateTaskHandler posts a new task owned by the authenticated user.
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	deadline, ok := parseDeadline(req.Deadline)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid deadline format"})
		return
	}
	task, err := svc().CreateTask(uid, req.Title, req.Description, req.Reward, deadline)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created successfully", Data: task})
}

// taskWithGiver is the list-view shape: the task plus the giver's public name.
type taskWithGiver struct {
	models.Task
	GiverUsername string `json:"giver_username"`
}

func attachGiverNames(tasks []models.Task) []taskWithGiver {
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.GiverID)
	}
	names := map[uint]string{}
	if len(ids) > 0 {
		var users []models.User
		database.DB.Select("id, username").Where("id IN ?", ids).Find(&users)
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}
	out := make([]taskWithGiver, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskWithGiver{Task: t, GiverUsername: names[t.GiverID]})
	}
	return out
}

// ListTasksHandler returns tasks newest first, optionally filtered by status.
func ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Order("created_at DESC")
	if status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); status != "" {
		switch status {
		case models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusCancelled:
			q = q.Where("status = ?", status)
		default:
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid status filter"})
			return
		}
	}
	var list []models.Task
	if err := q.Find(&list).Error; err != nil {
		log.Printf("[tasks] DB error listing tasks: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: attachGiverNames(list)})
}

// GetTaskHandler returns one task with its application history. Applicant
// usernames are attached so the giver can review applications in one call.
func GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s := svc()
	task, err := s.GetTask(id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	apps, err := s.ApplicationHistory(id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}

	userIDs := []uint{task.GiverID}
	for _, a := range apps {
		userIDs = append(userIDs, a.ApplicantID)
	}
	names := map[uint]string{}
	var users []models.User
	database.DB.Select("id, username").Where("id IN ?", userIDs).Find(&users)
	for _, u := range users {
		names[u.ID] = u.Username
	}

	type appItem struct {
		models.TaskApplication
		ApplicantUsername string `json:"applicant_username"`
	}
	appList := make([]appItem, 0, len(apps))
	for _, a := range apps {
		appList = append(appList, appItem{TaskApplication: a, ApplicantUsername: names[a.ApplicantID]})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"task":           task,
			"giver_username": names[task.GiverID],
			"applications":   appList,
		},
	})
}

// DuplicateTaskHandler reposts an existing task of the caller as a fresh OPEN
// task with the same title, description and reward. The deadline comes from
// the request since the old one is usually in the past.
func DuplicateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Deadline string `json:"deadline" validate:"required"`
	}
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	deadline, ok := parseDeadline(req.Deadline)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid deadline format"})
		return
	}

	s := svc()
	orig, err := s.GetTask(id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	if orig.GiverID != uid {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Only the task giver can duplicate a task"})
		return
	}
	task, err := s.CreateTask(uid, orig.Title, orig.Description, orig.Reward, deadline)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task duplicated successfully", Data: task})
}

type EditTaskRequest struct {
	Deadline string `json:"deadline" validate:"required"`
	Note     string `json:"note"`
}

// EditTaskHandler updates the deadline. A non-empty note is recorded as a
// comment on the task so applicants see why the deadline moved.
func EditTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req EditTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	deadline, ok := parseDeadline(req.Deadline)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid deadline format"})
		return
	}
	if err := svc().UpdateDeadline(id, uid, &deadline, strings.TrimSpace(req.Note)); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated successfully"})
}
