package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/models"

	"gorm.io/gorm"
)

// CreateTask opens a new task owned by giverID.
func (s *TaskService) CreateTask(giverID uint, title, description, reward string, deadline time.Time) (*models.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	reward = strings.TrimSpace(reward)
	if title == "" || description == "" || reward == "" {
		return nil, fmt.Errorf("%w: title, description and reward are required", ErrValidation)
	}
	if deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline is required", ErrValidation)
	}
	task := models.Task{
		GiverID:     giverID,
		Title:       title,
		Description: description,
		Reward:      reward,
		Deadline:    deadline,
		Status:      models.TaskStatusOpen,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// AcceptApplicant moves an OPEN task to IN_PROGRESS, assigns the applicant as
// acceptor, marks their application ACCEPTED and batch-rejects every other
// PENDING application. The whole batch commits or none of it does. The task
// update is scoped to status = OPEN so of two racing accepts exactly one wins;
// the loser sees ErrInvalidState.
func (s *TaskService) AcceptApplicant(taskID, applicantID, giverID uint) (*models.Task, error) {
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID != giverID {
			return fmt.Errorf("%w: only the task giver can accept applicants", ErrForbidden)
		}
		if task.Status != models.TaskStatusOpen {
			return fmt.Errorf("%w: task is not open", ErrInvalidState)
		}

		var app models.TaskApplication
		if err := tx.Where("task_id = ? AND applicant_id = ? AND status = ?",
			taskID, applicantID, models.ApplicationStatusPending).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no pending application from user %d", ErrNotFound, applicantID)
			}
			return err
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", taskID, models.TaskStatusOpen).
			Updates(map[string]interface{}{
				"status":      models.TaskStatusInProgress,
				"acceptor_id": applicantID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task is no longer open", ErrInvalidState)
		}

		if err := tx.Model(&models.TaskApplication{}).Where("id = ?", app.ID).
			Update("status", models.ApplicationStatusAccepted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TaskApplication{}).
			Where("task_id = ? AND applicant_id <> ? AND status = ?",
				taskID, applicantID, models.ApplicationStatusPending).
			Update("status", models.ApplicationStatusRejected).Error; err != nil {
			return err
		}

		task.Status = models.TaskStatusInProgress
		task.AcceptorID = &applicantID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask moves an IN_PROGRESS task to COMPLETED and awards the acceptor
// a trophy. The status-scoped update makes a retried complete fail on the
// precondition instead of incrementing the trophy twice.
func (s *TaskService) CompleteTask(taskID, giverID uint) (*models.Task, error) {
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID != giverID {
			return fmt.Errorf("%w: only the task giver can complete the task", ErrForbidden)
		}
		if task.Status != models.TaskStatusInProgress {
			return fmt.Errorf("%w: task must be in progress to complete", ErrInvalidState)
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", taskID, models.TaskStatusInProgress).
			Update("status", models.TaskStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task is no longer in progress", ErrInvalidState)
		}

		if task.AcceptorID != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", *task.AcceptorID).
				Update("trophies", gorm.Expr("trophies + 1")).Error; err != nil {
				return err
			}
		}

		task.Status = models.TaskStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CancelTask moves an OPEN or IN_PROGRESS task to CANCELLED. The acceptor, if
// any, stays on the record: rating eligibility for cancelled tasks depends on
// who was assigned at cancellation time.
func (s *TaskService) CancelTask(taskID, giverID uint) (*models.Task, error) {
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID != giverID {
			return fmt.Errorf("%w: only the task giver can cancel the task", ErrForbidden)
		}
		if task.Status == models.TaskStatusCompleted || task.Status == models.TaskStatusCancelled {
			return fmt.Errorf("%w: task is already %s", ErrInvalidState, strings.ToLower(task.Status))
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status IN ?", taskID,
				[]string{models.TaskStatusOpen, models.TaskStatusInProgress}).
			Update("status", models.TaskStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task can no longer be cancelled", ErrInvalidState)
		}

		task.Status = models.TaskStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// WithdrawFromTask lets the current acceptor leave an IN_PROGRESS task. The
// task reopens with no acceptor and a fresh WITHDRAWN application row is
// written as permanent provenance; the original ACCEPTED row is untouched.
// The reason is recorded as a task comment so the giver sees why.
func (s *TaskService) WithdrawFromTask(taskID, acceptorID uint, reason string) (*models.Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.AcceptorID == nil || *task.AcceptorID != acceptorID {
			return fmt.Errorf("%w: only the current acceptor can withdraw", ErrForbidden)
		}
		if task.Status != models.TaskStatusInProgress {
			return fmt.Errorf("%w: task is not in progress", ErrInvalidState)
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ? AND acceptor_id = ?",
				taskID, models.TaskStatusInProgress, acceptorID).
			Updates(map[string]interface{}{
				"status":      models.TaskStatusOpen,
				"acceptor_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task is no longer in progress", ErrInvalidState)
		}

		record := models.TaskApplication{
			TaskID:      taskID,
			ApplicantID: acceptorID,
			Status:      models.ApplicationStatusWithdrawn,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		note := models.TaskComment{
			TaskID:      taskID,
			UserID:      acceptorID,
			CommentText: "[WITHDRAWN] Reason: " + reason,
		}
		if err := tx.Create(&note).Error; err != nil {
			return err
		}

		task.Status = models.TaskStatusOpen
		task.AcceptorID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// RemoveAcceptor lets the giver unassign the current acceptor from an
// IN_PROGRESS task. The acceptor's ACCEPTED application flips to REMOVED and
// the task reopens.
func (s *TaskService) RemoveAcceptor(taskID, giverID uint, reason string) (*models.Task, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID != giverID {
			return fmt.Errorf("%w: only the task giver can remove the acceptor", ErrForbidden)
		}
		if task.Status != models.TaskStatusInProgress {
			return fmt.Errorf("%w: task is not in progress", ErrInvalidState)
		}
		if task.AcceptorID == nil {
			return fmt.Errorf("%w: no acceptor assigned", ErrInvalidState)
		}
		acceptorID := *task.AcceptorID

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ? AND acceptor_id = ?",
				taskID, models.TaskStatusInProgress, acceptorID).
			Updates(map[string]interface{}{
				"status":      models.TaskStatusOpen,
				"acceptor_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: task is no longer in progress", ErrInvalidState)
		}

		if err := tx.Model(&models.TaskApplication{}).
			Where("task_id = ? AND applicant_id = ? AND status = ?",
				taskID, acceptorID, models.ApplicationStatusAccepted).
			Update("status", models.ApplicationStatusRemoved).Error; err != nil {
			return err
		}
		note := models.TaskComment{
			TaskID:      taskID,
			UserID:      giverID,
			CommentText: "[REMOVED ACCEPTOR] Reason: " + reason,
		}
		if err := tx.Create(&note).Error; err != nil {
			return err
		}

		task.Status = models.TaskStatusOpen
		task.AcceptorID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateDeadline extends a task's deadline and optionally records a change
// note as a comment. Only the deadline is mutable after creation.
func (s *TaskService) UpdateDeadline(taskID, giverID uint, deadline *time.Time, note string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID != giverID {
			return fmt.Errorf("%w: only the task giver can edit the task", ErrForbidden)
		}
		if deadline != nil {
			if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
				Update("deadline", *deadline).Error; err != nil {
				return err
			}
		}
		if note = strings.TrimSpace(note); note != "" {
			comment := models.TaskComment{TaskID: taskID, UserID: giverID, CommentText: note}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ExpireOpenTasks cancels every OPEN task whose deadline has passed. The
// update is scoped to status = OPEN at commit time, so a task accepted in the
// same instant is left alone and a rerun over already-cancelled tasks is a
// no-op. Returns the number of tasks cancelled.
func (s *TaskService) ExpireOpenTasks(now time.Time) (int64, error) {
	res := s.DB.Model(&models.Task{}).
		Where("status = ? AND deadline < ?", models.TaskStatusOpen, now).
		Update("status", models.TaskStatusCancelled)
	return res.RowsAffected, res.Error
}

// GetTask loads a task by ID.
func (s *TaskService) GetTask(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	return &task, nil
}
