package tasks

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"time"

	"taskboard/utils"
)

// ExpireTasksHandler runs the expiry sweep on demand. It is meant for an
// external scheduler and is guarded by the X-CRON-KEY header; the in-process
// cron in main calls the service directly.
func ExpireTasksHandler(w http.ResponseWriter, r *http.Request) {
	key := os.Getenv("CRON_KEY")
	if key == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get("X-CRON-KEY")), []byte(key)) != 1 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	n, err := svc().ExpireOpenTasks(time.Now())
	if err != nil {
		log.Printf("[cron] expiry sweep failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	log.Printf("[cron] expiry sweep cancelled %d overdue open tasks", n)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Expiry sweep completed",
		Data:    map[string]int64{"expired": n},
	})
}
