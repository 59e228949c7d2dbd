package tasks

import (
	"net/http"
	"strings"

	"taskboard/middleware"
	"taskboard/utils"
)

type RateRequest struct {
	RatedUserID uint   `json:"rated_user_id"`
	RatingValue int    `json:"rating_value"`
	Comment     string `json:"comment"`
}

// RateHandler submits a 1-5 rating from the caller to their counterparty on
// the task. Eligibility is decided in the service layer.
func RateHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req RateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.RatedUserID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "rated_user_id is required"})
		return
	}
	var comment *string
	if c := strings.TrimSpace(req.Comment); c != "" {
		comment = &c
	}
	rating, err := svc().SubmitRating(id, uid, req.RatedUserID, req.RatingValue, comment)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Rating submitted successfully", Data: rating})
}

// HasRatedHandler tells the client whether the caller already rated on this
// task, so the UI can hide the rating form.
func HasRatedHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rated, err := svc().HasRated(id, uid)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]bool{"has_rated": rated},
	})
}
