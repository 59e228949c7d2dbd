package routes

import (
	"net/http"
	"time"

	"taskboard/controllers/tasks"
	"taskboard/middleware"

	"github.com/gorilla/mux"
)

// TasksRoutes registers the task marketplace routes on the given subrouter.
// The /tasks/my/* routes must be registered before /tasks/{id} so "my" is not
// swallowed as a task id.
func TasksRoutes(api *mux.Router) {
	taskLimiter := middleware.NewUserRateLimiter(120, 60, time.Minute)

	authed := func(h http.HandlerFunc) http.Handler {
		return taskLimiter.Middleware(middleware.AuthMiddleware(h))
	}

	api.Handle("/tasks/my/given", authed(tasks.MyGivenTasksHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/my/accepted", authed(tasks.MyAcceptedTasksHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/my/applications", authed(tasks.MyApplicationsHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/my/withdrawn-removed", authed(tasks.MyWithdrawnRemovedHandler)).Methods(http.MethodGet)

	api.Handle("/tasks", authed(tasks.ListTasksHandler)).Methods(http.MethodGet)
	api.Handle("/tasks", authed(tasks.CreateTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}", authed(tasks.GetTaskHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", authed(tasks.EditTaskHandler)).Methods(http.MethodPut)
	api.Handle("/tasks/{id:[0-9]+}", authed(tasks.CancelTaskHandler)).Methods(http.MethodDelete)
	api.Handle("/tasks/{id:[0-9]+}/duplicate", authed(tasks.DuplicateTaskHandler)).Methods(http.MethodPost)

	api.Handle("/tasks/{id:[0-9]+}/apply", authed(tasks.ApplyHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/accept/{applicantId:[0-9]+}", authed(tasks.AcceptApplicantHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/reject/{applicantId:[0-9]+}", authed(tasks.RejectApplicantHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/complete", authed(tasks.CompleteTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/cant-do", authed(tasks.WithdrawHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/remove-acceptor", authed(tasks.RemoveAcceptorHandler)).Methods(http.MethodPost)

	api.Handle("/tasks/{id:[0-9]+}/rate", authed(tasks.RateHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/has-rated", authed(tasks.HasRatedHandler)).Methods(http.MethodGet)

	api.Handle("/tasks/{id:[0-9]+}/comments", authed(tasks.ListCommentsHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/comments", authed(tasks.CreateCommentHandler)).Methods(http.MethodPost)
}
