package models

import "time"

const (
	ApplicationStatusPending   = "PENDING"
	ApplicationStatusAccepted  = "ACCEPTED"
	ApplicationStatusRejected  = "REJECTED"
	ApplicationStatusRemoved   = "REMOVED"
	ApplicationStatusWithdrawn = "WITHDRAWN"
)

// TaskApplication rows are append-mostly: the PENDING/ACCEPTED/REJECTED row
// created on apply is the application proper, while WITHDRAWN rows are fresh
// records written when an acceptor leaves an in-progress task.
//
// Live is non-NULL only on the row apply creates, so idx_live_application
// enforces one application per (task, applicant) at the database level even
// under concurrent inserts; provenance rows leave Live NULL, which the unique
// index exempts. The row keeps its marker when its status later flips to
// REMOVED, so the pair stays blocked for re-apply.
type TaskApplication struct {
	ID          uint      `gorm:"primaryKey" json:"application_id"`
	TaskID      uint      `gorm:"not null;index:idx_task_applicant;uniqueIndex:idx_live_application" json:"task_id"`
	ApplicantID uint      `gorm:"not null;index:idx_task_applicant;uniqueIndex:idx_live_application" json:"applicant_id"`
	Status      string    `gorm:"type:varchar(20);default:'PENDING';not null" json:"status"`
	Live        *bool     `gorm:"uniqueIndex:idx_live_application" json:"-"`
	AppliedAt   time.Time `gorm:"autoCreateTime" json:"applied_at"`
}
