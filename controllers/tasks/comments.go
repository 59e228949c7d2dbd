package tasks

import (
	"log"
	"net/http"
	"strings"

	"taskboard/database"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"
)

type commentNode struct {
	models.TaskComment
	Username string        `json:"username"`
	Replies  []commentNode `json:"replies"`
}

// ListCommentsHandler returns the task's comments as one-level threads:
// root comments in posting order, each with its direct replies.
func ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := svc().GetTask(id); err != nil {
		utils.WriteServiceError(w, err)
		return
	}

	var comments []models.TaskComment
	if err := database.DB.Where("task_id = ?", id).Order("created_at ASC").Find(&comments).Error; err != nil {
		log.Printf("[comments] DB error listing comments for task %d: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	userIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	names := map[uint]string{}
	if len(userIDs) > 0 {
		var users []models.User
		database.DB.Select("id, username").Where("id IN ?", userIDs).Find(&users)
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}

	// Replies beyond one level are flattened onto their root comment's thread
	// because ParentCommentID always points at a root.
	byID := map[uint]int{}
	roots := make([]commentNode, 0, len(comments))
	for _, c := range comments {
		if c.ParentCommentID == nil {
			roots = append(roots, commentNode{TaskComment: c, Username: names[c.UserID], Replies: []commentNode{}})
			byID[c.ID] = len(roots) - 1
		}
	}
	for _, c := range comments {
		if c.ParentCommentID == nil {
			continue
		}
		if idx, found := byID[*c.ParentCommentID]; found {
			roots[idx].Replies = append(roots[idx].Replies, commentNode{TaskComment: c, Username: names[c.UserID], Replies: []commentNode{}})
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: roots})
}

type CreateCommentRequest struct {
	CommentText     string `json:"comment_text" validate:"required"`
	ParentCommentID *uint  `json:"parent_comment_id"`
}

// CreateCommentHandler posts a comment or a reply on a task. Replies must
// reference a root comment on the same task.
func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if strings.TrimSpace(req.CommentText) == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Comment text is required"})
		return
	}
	if _, err := svc().GetTask(id); err != nil {
		utils.WriteServiceError(w, err)
		return
	}

	if req.ParentCommentID != nil {
		var parent models.TaskComment
		if err := database.DB.First(&parent, *req.ParentCommentID).Error; err != nil || parent.TaskID != id {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Parent comment not found on this task"})
			return
		}
		if parent.ParentCommentID != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Replies to replies are not allowed"})
			return
		}
	}

	comment := models.TaskComment{
		TaskID:          id,
		UserID:          uid,
		CommentText:     strings.TrimSpace(req.CommentText),
		ParentCommentID: req.ParentCommentID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		log.Printf("[comments] DB error creating comment on task %d: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Comment added successfully", Data: comment})
}
