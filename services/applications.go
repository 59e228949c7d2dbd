package services

import (
	"errors"
	"fmt"

	"taskboard/models"

	"gorm.io/gorm"
)

// Apply creates a PENDING application for an OPEN task. A user gets one
// application per task, ever: any existing row for the pair, including a
// WITHDRAWN or REMOVED provenance record, blocks a new one. The count below is
// the friendly check; two racing applies that both pass it are resolved by the
// idx_live_application unique index, and the loser's insert error is mapped to
// the same ErrConflict.
func (s *TaskService) Apply(taskID, applicantID uint) (*models.TaskApplication, error) {
	var app models.TaskApplication
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID == applicantID {
			return fmt.Errorf("%w: cannot apply to your own task", ErrForbidden)
		}
		if task.Status != models.TaskStatusOpen {
			return fmt.Errorf("%w: task is not open", ErrInvalidState)
		}

		var count int64
		if err := tx.Model(&models.TaskApplication{}).
			Where("task_id = ? AND applicant_id = ?", taskID, applicantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: already applied to this task", ErrConflict)
		}

		live := true
		app = models.TaskApplication{
			TaskID:      taskID,
			ApplicantID: applicantID,
			Status:      models.ApplicationStatusPending,
			Live:        &live,
		}
		if err := tx.Create(&app).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: already applied to this task", ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// RejectApplicant lets the giver turn down a PENDING application without
// touching the task itself.
func (s *TaskService) RejectApplicant(taskID, applicantID, giverID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}
		if task.GiverID != giverID {
			return fmt.Errorf("%w: only the task giver can reject applicants", ErrForbidden)
		}

		res := tx.Model(&models.TaskApplication{}).
			Where("task_id = ? AND applicant_id = ? AND status = ?",
				taskID, applicantID, models.ApplicationStatusPending).
			Update("status", models.ApplicationStatusRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: no pending application from user %d", ErrNotFound, applicantID)
		}
		return nil
	})
}

// ApplicationHistory returns every application row for a task, newest first.
func (s *TaskService) ApplicationHistory(taskID uint) ([]models.TaskApplication, error) {
	var apps []models.TaskApplication
	err := s.DB.Where("task_id = ?", taskID).
		Order("applied_at DESC, id DESC").Find(&apps).Error
	return apps, err
}

// AcceptedApplicant returns the ACCEPTED application for a task, or nil.
func (s *TaskService) AcceptedApplicant(taskID uint) (*models.TaskApplication, error) {
	var app models.TaskApplication
	err := s.DB.Where("task_id = ? AND status = ?", taskID, models.ApplicationStatusAccepted).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// latestExitApplication returns the most recent WITHDRAWN or REMOVED row for
// (task, user), or nil when the user never left the task that way. Several
// rows can exist in principle; the newest one decides rating eligibility.
func latestExitApplication(tx *gorm.DB, taskID, userID uint) (*models.TaskApplication, error) {
	var app models.TaskApplication
	err := tx.Where("task_id = ? AND applicant_id = ? AND status IN ?",
		taskID, userID,
		[]string{models.ApplicationStatusWithdrawn, models.ApplicationStatusRemoved}).
		Order("applied_at DESC, id DESC").First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}
