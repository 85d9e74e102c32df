package models

import (
	"time"

	"github.com/google/uuid"
)

// Task lifecycle statuses. Tasks are never deleted; completed and rejected
// are terminal.
const (
	TaskStatusPending    = "pending"
	TaskStatusApproved   = "approved"
	TaskStatusInProgress = "in_progress"
	TaskStatusSubmitted  = "submitted"
	TaskStatusAuditing   = "auditing"
	TaskStatusCompleted  = "completed"
	TaskStatusRejected   = "rejected"
)

// Task assignment types: a single task is completed by exactly one assigned
// worker; a multiple task by up to MaxCompletions independent workers.
const (
	TaskTypeSingle   = "single"
	TaskTypeMultiple = "multiple"
)

type Task struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Reward             int64      `json:"reward"`
	UploaderID         uuid.UUID  `json:"uploader_id"`
	UploaderName       string     `json:"uploader_name"`
	Status             string     `json:"status"`
	TaskType           string     `json:"task_type"`
	MaxCompletions     int        `json:"max_completions"`
	CurrentCompletions int        `json:"current_completions"`
	AssignedUserID     *uuid.UUID `json:"assigned_user_id,omitempty"`
	AssignedUserName   string     `json:"assigned_user_name,omitempty"`
	IsEscrowHeld       bool       `json:"is_escrow_held"`
	Requirements       []string   `json:"requirements,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TotalEscrow is the full reward pool reserved at creation time:
// one reward for single tasks, reward × MaxCompletions for multiple.
func (t *Task) TotalEscrow() int64 {
	if t.TaskType == TaskTypeSingle {
		return t.Reward
	}
	return t.Reward * int64(t.MaxCompletions)
}

// Terminal reports whether the task can no longer change state.
func (t *Task) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusRejected
}
