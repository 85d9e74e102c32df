package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission statuses. A submission is audited at most once.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
)

// TaskSubmission is one (task, worker) attempt. RewardAmount snapshots the
// task reward at submission time so later edits can never change the payout.
type TaskSubmission struct {
	ID             uuid.UUID  `json:"id"`
	TaskID         uuid.UUID  `json:"task_id"`
	UserID         uuid.UUID  `json:"user_id"`
	UserName       string     `json:"user_name"`
	SubmissionText string     `json:"submission_text,omitempty"`
	EvidenceURL    string     `json:"evidence_url,omitempty"`
	Status         string     `json:"status"`
	AuditNotes     string     `json:"audit_notes,omitempty"`
	RewardAmount   int64      `json:"reward_amount"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	AuditedAt      *time.Time `json:"audited_at,omitempty"`
}
