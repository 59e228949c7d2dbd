package tasks

import (
	"net/http"
	"strconv"

	"taskboard/middleware"
	"taskboard/utils"

	"github.com/gorilla/mux"
)

func pathApplicantID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["applicantId"]
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid applicant id"})
		return 0, false
	}
	return uint(n), true
}

// ApplyHandler submits the caller's application for an open task.
func ApplyHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	app, err := svc().Apply(id, uid)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Application submitted successfully", Data: app})
}

// AcceptApplicantHandler picks one pending applicant; the task moves to
// IN_PROGRESS and every other pending application is rejected.
func AcceptApplicantHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	applicantID, ok := pathApplicantID(w, r)
	if !ok {
		return
	}
	task, err := svc().AcceptApplicant(id, applicantID, uid)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Applicant accepted successfully", Data: task})
}

// RejectApplicantHandler rejects a single pending applicant without touching
// the task itself.
func RejectApplicantHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	applicantID, ok := pathApplicantID(w, r)
	if !ok {
		return
	}
	if err := svc().RejectApplicant(id, applicantID, uid); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Applicant rejected successfully"})
}

// CompleteTaskHandler marks an in-progress task done and awards the acceptor
// a trophy.
func CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := svc().CompleteTask(id, uid)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task completed successfully", Data: task})
}

// CancelTaskHandler cancels an open or in-progress task.
func CancelTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := svc().CancelTask(id, uid)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task cancelled successfully", Data: task})
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// WithdrawHandler lets the current acceptor back out of an in-progress task.
// The task reopens and the reason is recorded for future givers to see.
func WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task, err := svc().WithdrawFromTask(id, uid, req.Reason)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Withdrawn from task successfully", Data: task})
}

// RemoveAcceptorHandler lets the giver kick the current acceptor; the task
// reopens for new applications.
func RemoveAcceptorHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	task, err := svc().RemoveAcceptor(id, uid, req.Reason)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Acceptor removed successfully", Data: task})
}
