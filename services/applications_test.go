package services

import (
	"errors"
	"testing"

	"taskboard/models"
)

func TestApply_Guards(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(9999, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("apply to missing task should be not-found, got %v", err)
	}
	if _, err := s.Apply(task.ID, g.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("giver applying to own task should be forbidden, got %v", err)
	}

	app, err := s.Apply(task.ID, a.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != models.ApplicationStatusPending {
		t.Fatalf("new application should be PENDING, got %s", app.Status)
	}

	if _, err := s.Apply(task.ID, a.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("second apply should conflict, got %v", err)
	}
}

func TestApply_RacingDuplicateBlockedByIndex(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// A second insert for the pair, as a racing transaction attempts after
	// both pass the row count, must die on idx_live_application.
	live := true
	dup := models.TaskApplication{
		TaskID:      task.ID,
		ApplicantID: a.ID,
		Status:      models.ApplicationStatusPending,
		Live:        &live,
	}
	err := s.DB.Create(&dup).Error
	if err == nil {
		t.Fatal("second live application row for the pair should be rejected by the unique index")
	}
	if !isDuplicateKey(err) {
		t.Fatalf("expected a unique-index violation, got %v", err)
	}

	var rows int64
	s.DB.Model(&models.TaskApplication{}).
		Where("task_id = ? AND applicant_id = ?", task.ID, a.ID).
		Count(&rows)
	if rows != 1 {
		t.Fatalf("exactly one application row should exist for the pair, got %d", rows)
	}

	// Provenance rows carry no marker, so the index permits several of them
	// alongside the application proper.
	for i := 0; i < 2; i++ {
		exit := models.TaskApplication{
			TaskID:      task.ID,
			ApplicantID: a.ID,
			Status:      models.ApplicationStatusWithdrawn,
		}
		if err := s.DB.Create(&exit).Error; err != nil {
			t.Fatalf("exit provenance row %d should be allowed, got %v", i+1, err)
		}
	}
}

func TestApply_ClosedTask(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := s.Apply(task.ID, b.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("apply to in-progress task should be invalid state, got %v", err)
	}
}

func TestApply_BlockedByExitRecord(t *testing.T) {
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
	if _, err := s.WithdrawFromTask(task.ID, a.ID, "sorry"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// The task is OPEN again but alice's history on it blocks a fresh apply.
	if _, err := s.Apply(task.ID, a.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("re-apply after withdrawing should conflict, got %v", err)
	}
}

func TestRejectApplicant(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.RejectApplicant(task.ID, a.ID, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-giver reject should be forbidden, got %v", err)
	}
	if err := s.RejectApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	apps, err := s.ApplicationHistory(task.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(apps) != 1 || apps[0].Status != models.ApplicationStatusRejected {
		t.Fatalf("application should be REJECTED, got %+v", apps)
	}

	// Already rejected, nothing pending left to reject.
	if err := s.RejectApplicant(task.ID, a.ID, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat reject should be not-found, got %v", err)
	}
	// The task itself is untouched.
	if got := mustReload(t, s, task.ID).Status; got != models.TaskStatusOpen {
		t.Fatalf("task should stay OPEN after reject, got %s", got)
	}
}

func TestAcceptedApplicant(t *testing.T) {
	s := newTestService(t)
	g := createUser(t, s, "giver")
	a := createUser(t, s, "alice")
	task := createOpenTask(t, s, g.ID)

	app, err := s.AcceptedApplicant(task.ID)
	if err != nil {
		t.Fatalf("accepted applicant: %v", err)
	}
	if app != nil {
		t.Fatalf("no acceptance yet, got %+v", app)
	}

	if _, err := s.Apply(task.ID, a.ID); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := s.AcceptApplicant(task.ID, a.ID, g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	app, err = s.AcceptedApplicant(task.ID)
	if err != nil {
		t.Fatalf("accepted applicant: %v", err)
	}
	if app == nil || app.ApplicantID != a.ID {
		t.Fatalf("expected alice's accepted application, got %+v", app)
	}
}
