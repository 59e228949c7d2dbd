package tasks

import (
	"net/http"
	"strconv"

	"taskboard/database"
	"taskboard/services"
	"taskboard/utils"

	"github.com/gorilla/mux"
)

func svc() *services.TaskService {
	return services.NewTaskService(database.DB)
}

// pathID extracts the {id} route variable. Writes a 400 and returns ok=false
// when it is missing or not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return 0, false
	}
	return uint(n), true
}

func authedUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return 0, false
	}
	return uid, true
}
