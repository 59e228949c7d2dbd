package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"taskboard/models"
)

func TestCreateTask_Validation(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")

	if _, err := s.CreateTask(g.ID, "  ", "desc", "reward", time.Now().Add(time.Hour)); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank title should fail validation, got %v", err)
	}
	if _, err := s.CreateTask(g.ID, "title", "desc", "reward", time.Time{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero deadline should fail validation, got %v", err)
	}

	task, err := s.CreateTask(g.ID, "title", "desc", "reward", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != models.TaskStatusOpen {
		t.Fatalf("new task should be OPEN, got %s", task.Status)
	}
	if task.AcceptorID != nil {
		t.Fatal("new task should have no acceptor")
	}
}

func TestAcceptApplicant_RejectsOtherPending(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("alice apply: %v", err)
	}
	if _, err := s.Apply(task.ID, b.ID); err != nil {
		t.Fatalf("bob apply: %v", err)
	}

	got, err := s.AcceptApplicant(task.ID, a.ID, g.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != models.TaskStatusInProgress {
		t.Fatalf("task should be IN_PROGRESS, got %s", got.Status)
	}
	if got.AcceptorID == nil || *got.AcceptorID != a.ID {
		t.Fatal("acceptor should be alice")
	}

	apps, err := s.ApplicationHistory(task.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	byUser := map[uint]string{}
	for _, app := range apps {
		byUser[app.ApplicantID] = app.Status
	}
	if byUser[a.ID] != models.ApplicationStatusAccepted {
		t.Fatalf("alice's application should be ACCEPTED, got %s", byUser[a.ID])
	}
	if byUser[b.ID] != models.ApplicationStatusRejected {
		t.Fatalf("bob's application should be auto-rejected, got %s", byUser[b.ID])
	}
}

func TestAcceptApplicant_Guards(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.AcceptApplicant(task.ID, a.ID, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-giver accept should be forbidden, got %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("accepting without an application should be not-found, got %v", err)
	}

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("alice apply: %v", err)
	}
	if _, err := s.Apply(task.ID, b.ID); err != nil {
		t.Fatalf("bob apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept alice: %v", err)
	}

	// Second accept loses: the task is no longer OPEN.
	if _, err := s.AcceptApplicant(task.ID, b.ID, g.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("accept on non-open task should be invalid state, got %v", err)
	}
}

func TestAcceptApplicant_ConcurrentSingleWinner(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("alice apply: %v", err)
	}
	if _, err := s.Apply(task.ID, b.ID); err != nil {
		t.Fatalf("bob apply: %v", err)
	}

	type result struct {
		applicant uint
		err       error
	}
	results := make(chan result, 2)
	start := make(chan struct{})
	for _, id := range []uint{a.ID, b.ID} {
		go func(applicantID uint) {
			<-start
			_, err := s.AcceptApplicant(task.ID, applicantID, g.ID)
			results <- result{applicant: applicantID, err: err}
		}(id)
	}
	close(start)

	var winner uint
	var wins, losses int
	for i := 0; i < 2; i++ {
		r := <-results
		switch {
		case r.err == nil:
			wins++
			winner = r.applicant
		case errors.Is(r.err, ErrInvalidState):
			losses++
		default:
			t.Fatalf("accept for %d: unexpected error %v", r.applicant, r.err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("want exactly one winner and one invalid-state loser, got wins=%d losses=%d", wins, losses)
	}

	stored := mustReload(t, s, task.ID)
	if stored.Status != models.TaskStatusInProgress {
		t.Fatalf("task should be IN_PROGRESS, got %s", stored.Status)
	}
	if stored.AcceptorID == nil || *stored.AcceptorID != winner {
		t.Fatalf("acceptor should be the winning applicant %d, got %v", winner, stored.AcceptorID)
	}
	var accepted int64
	s.DB.Model(&models.TaskApplication{}).
		Where("task_id = ? AND status = ?", task.ID, models.ApplicationStatusAccepted).
		Count(&accepted)
	if accepted != 1 {
		t.Fatalf("exactly one application should end up ACCEPTED, got %d", accepted)
	}
}

func TestCompleteTask_AwardsSingleTrophy(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := s.CompleteTask(task.ID, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("acceptor completing should be forbidden, got %v", err)
	}

	done, err := s.CompleteTask(task.ID, g.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.TaskStatusCompleted {
		t.Fatalf("task should be COMPLETED, got %s", done.Status)
	}
	if trophies := reloadUser(t, s, a.ID).Trophies; trophies != 1 {
		t.Fatalf("acceptor should have 1 trophy, got %d", trophies)
	}

	// A retried complete fails on the precondition and never double-awards.
	if _, err := s.CompleteTask(task.ID, g.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("repeat complete should be invalid state, got %v", err)
	}
	if trophies := reloadUser(t, s, a.ID).Trophies; trophies != 1 {
		t.Fatalf("trophy count should stay at 1, got %d", trophies)
	}
}

func TestCompleteTask_RequiresInProgress(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.CompleteTask(task.ID, g.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("completing an open task should be invalid state, got %v", err)
	}
}

func TestCancelTask_KeepsAcceptorOnRecord(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := s.CancelTask(task.ID, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-giver cancel should be forbidden, got %v", err)
	}
	got, err := s.CancelTask(task.ID, g.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != models.TaskStatusCancelled {
		t.Fatalf("task should be CANCELLED, got %s", got.Status)
	}
	stored := mustReload(t, s, task.ID)
	if stored.AcceptorID == nil || *stored.AcceptorID != a.ID {
		t.Fatal("cancellation should keep the acceptor on the record")
	}

	if _, err := s.CancelTask(task.ID, g.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("repeat cancel should be invalid state, got %v", err)
	}
}

func TestWithdraw_ReopensAndRecordsProvenance(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := s.WithdrawFromTask(task.ID, a.ID, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("withdraw without reason should fail validation, got %v", err)
	}
	if _, err := s.WithdrawFromTask(task.ID, g.ID, "nope"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-acceptor withdraw should be forbidden, got %v", err)
	}

	got, err := s.WithdrawFromTask(task.ID, a.ID, "got sick")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got.Status != models.TaskStatusOpen || got.AcceptorID != nil {
		t.Fatalf("task should reopen with no acceptor, got %s / %v", got.Status, got.AcceptorID)
	}

	apps, err := s.ApplicationHistory(task.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var accepted, withdrawn int
	for _, app := range apps {
		if app.ApplicantID != a.ID {
			continue
		}
		switch app.Status {
		case models.ApplicationStatusAccepted:
			accepted++
		case models.ApplicationStatusWithdrawn:
			withdrawn++
		}
	}
	if accepted != 1 || withdrawn != 1 {
		t.Fatalf("expected the original ACCEPTED row plus a fresh WITHDRAWN row, got accepted=%d withdrawn=%d", accepted, withdrawn)
	}

	var comments []models.TaskComment
	if err := s.DB.Where("task_id = ?", task.ID).Find(&comments).Error; err != nil {
		t.Fatalf("load comments: %v", err)
	}
	found := false
	for _, c := range comments {
		if strings.HasPrefix(c.CommentText, "[WITHDRAWN] Reason: ") && strings.Contains(c.CommentText, "got sick") {
			found = true
		}
	}
	if !found {
		t.Fatal("withdrawal reason should be recorded as a task comment")
	}
}

func TestRemoveAcceptor_FlipsApplicationToRemoved(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := s.RemoveAcceptor(task.ID, a.ID, "reason"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-giver remove should be forbidden, got %v", err)
	}

	got, err := s.RemoveAcceptor(task.ID, g.ID, "no progress")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got.Status != models.TaskStatusOpen || got.AcceptorID != nil {
		t.Fatalf("task should reopen with no acceptor, got %s / %v", got.Status, got.AcceptorID)
	}

	apps, err := s.ApplicationHistory(task.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(apps) != 1 || apps[0].Status != models.ApplicationStatusRemoved {
		t.Fatalf("the ACCEPTED row should flip to REMOVED in place, got %+v", apps)
	}

	if _, err := s.RemoveAcceptor(task.ID, g.ID, "again"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("remove on reopened task should be invalid state, got %v", err)
	}
}

func TestUpdateDeadline_RecordsChangeNote(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	newDeadline := time.Now().Add(96 * time.Hour).Truncate(time.Second)
	if err := s.UpdateDeadline(task.ID, a.ID, &newDeadline, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-giver edit should be forbidden, got %v", err)
	}
	if err := s.UpdateDeadline(task.ID, g.ID, &newDeadline, "extended for exams"); err != nil {
		t.Fatalf("update deadline: %v", err)
	}

	stored := mustReload(t, s, task.ID)
	if !stored.Deadline.Equal(newDeadline) {
		t.Fatalf("deadline not updated: want %v got %v", newDeadline, stored.Deadline)
	}
	var count int64
	s.DB.Model(&models.TaskComment{}).
		Where("task_id = ? AND comment_text = ?", task.ID, "extended for exams").
		Count(&count)
	if count != 1 {
		t.Fatalf("change note should be stored as a comment, got %d rows", count)
	}
}

func TestExpireOpenTasks_OnlyTouchesOverdueOpen(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")

	overdue := createOpenTask(t, s, g.ID)
	s.DB.Model(&models.Task{}).Where("id = ?", overdue.ID).
		Update("deadline", time.Now().Add(-time.Hour))

	future := createOpenTask(t, s, g.ID)

	inProgress := createOpenTask(t, s, g.ID)
	if _, err := s.Apply(inProgress.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(inProgress.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	s.DB.Model(&models.Task{}).Where("id = ?", inProgress.ID).
		Update("deadline", time.Now().Add(-time.Hour))

	n, err := s.ExpireOpenTasks(time.Now())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("exactly one task should expire, got %d", n)
	}
	if got := mustReload(t, s, overdue.ID).Status; got != models.TaskStatusCancelled {
		t.Fatalf("overdue open task should be cancelled, got %s", got)
	}
	if got := mustReload(t, s, future.ID).Status; got != models.TaskStatusOpen {
		t.Fatalf("future task should stay open, got %s", got)
	}
	if got := mustReload(t, s, inProgress.ID).Status; got != models.TaskStatusInProgress {
		t.Fatalf("in-progress task should be untouched, got %s", got)
	}

	// Rerun is a no-op.
	n, err = s.ExpireOpenTasks(time.Now())
	if err != nil {
		t.Fatalf("second expire: %v", err)
	}
	if n != 0 {
		t.Fatalf("rerun should cancel nothing, got %d", n)
	}
}
