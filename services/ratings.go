package services

import (
	"errors"
	"fmt"

	"taskboard/models"

	"gorm.io/gorm"
)

// resolveRatingCategory is the rating eligibility decision table. It is a pure
// function over the task snapshot, the rater's and ratee's most recent
// WITHDRAWN/REMOVED application rows, and the two identities. It returns the
// inferred rating category or the violation kind.
//
// COMPLETED   giver -> acceptor            ACCEPTING
//             acceptor -> giver            GIVING
// CANCELLED   acceptor-at-cancel -> giver  GIVING      (giver may not rate)
// otherwise   giver -> withdrawn user      ACCEPTING   (only the giver may rate)
//             removed user -> giver        GIVING      (only the removed user may rate)
// anything else is Forbidden or InvalidRating.
func resolveRatingCategory(task *models.Task, raterExit, rateeExit *models.TaskApplication, raterID, ratedID uint) (string, error) {
	if raterID == ratedID {
		return "", fmt.Errorf("%w: cannot rate yourself", ErrInvalidRating)
	}

	isGiver := raterID == task.GiverID
	isAcceptor := task.AcceptorID != nil && *task.AcceptorID == raterID

	switch task.Status {
	case models.TaskStatusCompleted:
		if isGiver && task.AcceptorID != nil && ratedID == *task.AcceptorID {
			return models.RatingTypeAccepting, nil
		}
		if isAcceptor && ratedID == task.GiverID {
			return models.RatingTypeGiving, nil
		}
		return "", fmt.Errorf("%w: rater and ratee are not the giver/acceptor pair of this task", ErrInvalidRating)

	case models.TaskStatusCancelled:
		if isAcceptor && ratedID == task.GiverID {
			return models.RatingTypeGiving, nil
		}
		if isGiver {
			return "", fmt.Errorf("%w: giver cannot rate on a cancelled task", ErrForbidden)
		}
		return "", fmt.Errorf("%w: not involved in this task", ErrForbidden)

	default:
		// Task still OPEN or IN_PROGRESS: ratings only flow from a withdrawal
		// or removal that reopened it.
		if isGiver && rateeExit != nil && rateeExit.Status == models.ApplicationStatusWithdrawn {
			return models.RatingTypeAccepting, nil
		}
		if raterExit != nil && raterExit.Status == models.ApplicationStatusRemoved &&
			ratedID == task.GiverID {
			return models.RatingTypeGiving, nil
		}
		if isGiver || isAcceptor || raterExit != nil {
			return "", fmt.Errorf("%w: this pairing cannot rate while the task is %s", ErrInvalidRating, task.Status)
		}
		return "", fmt.Errorf("%w: not involved in this task", ErrForbidden)
	}
}

// SubmitRating validates eligibility, writes the rating and re-derives the
// ratee's running average for the affected category in the same transaction.
// The average is recomputed from all stored rows plus the permanent 5.0 seed
// rather than incrementally updated, so concurrent submitters cannot drift it.
func (s *TaskService) SubmitRating(taskID, raterID, ratedID uint, value int, comment *string) (*models.Rating, error) {
	if value < 1 || value > 5 {
		return nil, fmt.Errorf("%w: rating value must be between 1 and 5", ErrInvalidRating)
	}

	var rating models.Rating
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Rating{}).
			Where("task_id = ? AND rater_id = ?", taskID, raterID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: already rated this task", ErrConflict)
		}

		raterExit, err := latestExitApplication(tx, taskID, raterID)
		if err != nil {
			return err
		}
		rateeExit, err := latestExitApplication(tx, taskID, ratedID)
		if err != nil {
			return err
		}

		category, err := resolveRatingCategory(&task, raterExit, rateeExit, raterID, ratedID)
		if err != nil {
			return err
		}

		rating = models.Rating{
			TaskID:      taskID,
			RaterID:     raterID,
			RatedID:     ratedID,
			RatingValue: value,
			RatingType:  category,
			Comment:     comment,
		}
		if err := tx.Create(&rating).Error; err != nil {
			// A racing duplicate slips past the count and lands on
			// idx_task_rater; report it the same way.
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: already rated this task", ErrConflict)
			}
			return err
		}

		var agg struct {
			Total int64
			Cnt   int64
		}
		if err := tx.Model(&models.Rating{}).
			Where("rated_id = ? AND rating_type = ?", ratedID, category).
			Select("COALESCE(SUM(rating_value),0) AS total, COUNT(*) AS cnt").
			Scan(&agg).Error; err != nil {
			return err
		}
		avg := (models.RatingSeed + float64(agg.Total)) / float64(1+agg.Cnt)

		fields := map[string]interface{}{
			"accepting_rating":       avg,
			"accepting_rating_count": agg.Cnt,
		}
		if category == models.RatingTypeGiving {
			fields = map[string]interface{}{
				"giving_rating":       avg,
				"giving_rating_count": agg.Cnt,
			}
		}
		return tx.Model(&models.User{}).Where("id = ?", ratedID).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// HasRated reports whether the user already submitted a rating for the task.
func (s *TaskService) HasRated(taskID, userID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Rating{}).
		Where("task_id = ? AND rater_id = ?", taskID, userID).
		Count(&count).Error
	return count > 0, err
}

// RatingsReceived lists all ratings a user has received, newest first.
func (s *TaskService) RatingsReceived(userID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.DB.Where("rated_id = ?", userID).
		Order("created_at DESC, id DESC").Find(&ratings).Error
	return ratings, err
}
