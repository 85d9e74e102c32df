// Package services contains the escrow-backed task lifecycle engine and the
// wallet operations built on top of the ledger and the in-memory stores.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/store"
)

var (
	// ErrIllegalTransition is returned when an operation is attempted on a
	// task whose current status does not permit it.
	ErrIllegalTransition = errors.New("illegal task transition")

	// ErrAlreadyAssigned is returned when assigning a single task that
	// already has a worker.
	ErrAlreadyAssigned = errors.New("task already assigned")

	// ErrAlreadyAudited is returned when auditing a submission a second
	// time. Audits are idempotent per submission id: the first decision
	// stands and nothing is paid twice.
	ErrAlreadyAudited = errors.New("submission already audited")

	// ErrValidation is returned for malformed input that never reaches
	// the stores.
	ErrValidation = errors.New("validation failed")

	// ErrQuotaExceeded is returned when the user's monthly task quota for
	// their subscription plan is used up.
	ErrQuotaExceeded = errors.New("monthly task quota exceeded")
)

// UserDirectory is the minimal user lookup the engine needs for quota
// accounting.
type UserDirectory interface {
	GetByID(id uuid.UUID) (*models.User, error)
	IncrementMonthlyUsage(id uuid.UUID) error
}

// LifecycleService coordinates the task store, submission store and ledger
// under the lifecycle rules. A single mutex serializes every operation, which
// is the transaction boundary of the in-memory model: all validation happens
// before the first mutation, so a failed operation changes nothing.
type LifecycleService struct {
	mu     sync.Mutex
	tasks  *store.TaskStore
	subs   *store.SubmissionStore
	wallet *ledger.Ledger
	users  UserDirectory
	log    *slog.Logger
}

func NewLifecycleService(tasks *store.TaskStore, subs *store.SubmissionStore, wallet *ledger.Ledger, users UserDirectory, log *slog.Logger) *LifecycleService {
	if log == nil {
		log = slog.Default()
	}
	return &LifecycleService{tasks: tasks, subs: subs, wallet: wallet, users: users, log: log}
}

// CreateTaskSpec carries the uploader's form input.
type CreateTaskSpec struct {
	Title          string
	Description    string
	Category       string
	Reward         int64
	TaskType       string
	MaxCompletions int
	Requirements   []string
	Tags           []string
}

// CreateTask reserves the full reward pool from the uploader's balance and
// inserts the task as pending. The escrow hold is the only place the total
// cost is computed; rewards are immutable afterwards.
func (s *LifecycleService) CreateTask(ctx context.Context, uploaderID uuid.UUID, spec CreateTaskSpec) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec.Title == "" || spec.Reward <= 0 {
		return nil, fmt.Errorf("%w: title and a positive reward are required", ErrValidation)
	}
	switch spec.TaskType {
	case models.TaskTypeSingle:
		spec.MaxCompletions = 1
	case models.TaskTypeMultiple:
		if spec.MaxCompletions < 1 {
			return nil, fmt.Errorf("%w: max_completions must be >= 1", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown task type %q", ErrValidation, spec.TaskType)
	}

	uploader, err := s.users.GetByID(uploaderID)
	if err != nil {
		return nil, err
	}
	if limit := uploader.MonthlyTaskLimit(); limit != models.UnlimitedTasks && uploader.MonthlyTasksUsed >= limit {
		return nil, ErrQuotaExceeded
	}

	task := &models.Task{
		ID:             uuid.New(),
		Title:          spec.Title,
		Description:    spec.Description,
		Category:       spec.Category,
		Reward:         spec.Reward,
		TaskType:       spec.TaskType,
		MaxCompletions: spec.MaxCompletions,
		UploaderID:     uploader.ID,
		UploaderName:   uploader.Name,
		Requirements:   spec.Requirements,
		Tags:           spec.Tags,
		Status:         models.TaskStatusPending,
		IsEscrowHeld:   true,
	}

	total := task.TotalEscrow()
	if _, err := s.wallet.ApplyChecked(&models.WalletTransaction{
		UserID:      uploader.ID,
		Type:        models.TxTypeEscrowHold,
		Amount:      -total,
		Description: fmt.Sprintf("Escrow hold for task: %s", task.Title),
		TaskID:      &task.ID,
	}); err != nil {
		return nil, err
	}

	created := s.tasks.Create(task)
	if err := s.users.IncrementMonthlyUsage(uploader.ID); err != nil {
		s.log.Error("increment uploader usage", "user_id", uploader.ID, "error", err)
	}
	s.log.Info("task created", "task_id", created.ID, "uploader_id", uploader.ID, "escrow", total)
	return created, nil
}

// ApproveTask moves a pending task to approved. Admin only (enforced by the
// access gate in front of the engine).
func (s *LifecycleService) ApproveTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusPending {
		return nil, fmt.Errorf("%w: approve requires pending, task is %s", ErrIllegalTransition, task.Status)
	}
	if err := s.tasks.SetStatus(taskID, models.TaskStatusApproved); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(taskID)
}

// RejectTask terminally rejects a pending task and refunds the full escrow
// to the uploader. Rejection is only reachable before any submission, so the
// whole pool is still reserved.
func (s *LifecycleService) RejectTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusPending {
		return nil, fmt.Errorf("%w: reject requires pending, task is %s", ErrIllegalTransition, task.Status)
	}
	if err := s.tasks.SetStatus(taskID, models.TaskStatusRejected); err != nil {
		return nil, err
	}
	if task.IsEscrowHeld {
		s.wallet.Apply(&models.WalletTransaction{
			UserID:      task.UploaderID,
			Type:        models.TxTypeRefund,
			Amount:      task.TotalEscrow(),
			Description: fmt.Sprintf("Escrow refund for rejected task: %s", task.Title),
			TaskID:      &task.ID,
		})
		_ = s.tasks.SetEscrowHeld(taskID, false)
	}
	s.log.Info("task rejected", "task_id", taskID, "refund", task.TotalEscrow())
	return s.tasks.GetByID(taskID)
}

// AssignTask gives an approved, unassigned single task to a worker.
// Multiple tasks have no assignment step.
func (s *LifecycleService) AssignTask(ctx context.Context, taskID, userID uuid.UUID, userName string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.TaskType != models.TaskTypeSingle {
		return nil, fmt.Errorf("%w: only single tasks are assigned", ErrValidation)
	}
	if task.Status != models.TaskStatusApproved {
		return nil, fmt.Errorf("%w: assign requires approved, task is %s", ErrIllegalTransition, task.Status)
	}
	if task.AssignedUserID != nil {
		return nil, ErrAlreadyAssigned
	}
	if err := s.tasks.Assign(taskID, userID, userName); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(taskID)
}

// UnassignTask releases a single task back to the available pool.
func (s *LifecycleService) UnassignTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.TaskType != models.TaskTypeSingle || task.AssignedUserID == nil {
		return nil, fmt.Errorf("%w: task is not assigned", ErrValidation)
	}
	if task.Status != models.TaskStatusInProgress {
		return nil, fmt.Errorf("%w: unassign requires in_progress, task is %s", ErrIllegalTransition, task.Status)
	}
	if err := s.tasks.Unassign(taskID); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(taskID)
}

// SubmitTask records a worker's attempt, snapshotting the reward, and moves
// the task to submitted for audit. At least one of text and evidenceURL is
// required.
func (s *LifecycleService) SubmitTask(ctx context.Context, taskID, userID uuid.UUID, userName, text, evidenceURL string) (*models.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == "" && evidenceURL == "" {
		return nil, fmt.Errorf("%w: submission needs notes or evidence", ErrValidation)
	}
	task, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}

	switch task.TaskType {
	case models.TaskTypeSingle:
		if task.Status != models.TaskStatusInProgress {
			return nil, fmt.Errorf("%w: submit requires in_progress, task is %s", ErrIllegalTransition, task.Status)
		}
		if task.AssignedUserID == nil || *task.AssignedUserID != userID {
			return nil, fmt.Errorf("%w: task is assigned to another worker", ErrValidation)
		}
	case models.TaskTypeMultiple:
		if task.Status != models.TaskStatusApproved {
			return nil, fmt.Errorf("%w: submit requires approved, task is %s", ErrIllegalTransition, task.Status)
		}
		if task.CurrentCompletions >= task.MaxCompletions {
			return nil, fmt.Errorf("%w: task completion cap reached", ErrIllegalTransition)
		}
	}

	worker, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if limit := worker.MonthlyTaskLimit(); limit != models.UnlimitedTasks && worker.MonthlyTasksUsed >= limit {
		return nil, ErrQuotaExceeded
	}

	sub := s.subs.Create(&models.TaskSubmission{
		TaskID:         task.ID,
		UserID:         userID,
		UserName:       userName,
		SubmissionText: text,
		EvidenceURL:    evidenceURL,
		RewardAmount:   task.Reward,
	})
	if err := s.tasks.SetStatus(taskID, models.TaskStatusSubmitted); err != nil {
		return nil, err
	}
	if err := s.users.IncrementMonthlyUsage(userID); err != nil {
		s.log.Error("increment worker usage", "user_id", userID, "error", err)
	}
	s.log.Info("task submitted", "task_id", taskID, "submission_id", sub.ID, "worker_id", userID)
	return sub, nil
}

// AuditSubmission applies the approve-or-reject decision to a submission.
//
// On approval the worker is paid the snapshotted reward and an
// escrow_release entry is recorded against the uploader for bookkeeping (the
// money left their balance at creation time). Single tasks complete; multiple
// tasks complete when the cap is reached, otherwise they reopen for more
// workers. On rejection the submission is closed with notes and the task
// returns to the available pool, unassigning the worker on single tasks.
//
// A submission can be audited exactly once; a second call fails with
// ErrAlreadyAudited and pays nothing.
func (s *LifecycleService) AuditSubmission(ctx context.Context, submissionID uuid.UUID, decision, notes string) (*models.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if decision != models.SubmissionStatusApproved && decision != models.SubmissionStatusRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", ErrValidation)
	}
	sub, err := s.subs.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionStatusSubmitted {
		return nil, ErrAlreadyAudited
	}
	task, err := s.tasks.GetByID(sub.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusSubmitted {
		return nil, fmt.Errorf("%w: audit requires submitted, task is %s", ErrIllegalTransition, task.Status)
	}

	if err := s.subs.SetStatus(submissionID, decision, notes); err != nil {
		return nil, err
	}

	if decision == models.SubmissionStatusApproved {
		s.wallet.Apply(&models.WalletTransaction{
			UserID:      sub.UserID,
			Type:        models.TxTypeEarning,
			Amount:      sub.RewardAmount,
			Description: fmt.Sprintf("Reward for task: %s", task.Title),
			TaskID:      &task.ID,
		})
		s.wallet.RecordMemo(&models.WalletTransaction{
			UserID:      task.UploaderID,
			Type:        models.TxTypeEscrowRelease,
			Amount:      sub.RewardAmount,
			Description: fmt.Sprintf("Escrow released for task: %s", task.Title),
			TaskID:      &task.ID,
		})

		if task.TaskType == models.TaskTypeSingle {
			_ = s.tasks.SetStatus(task.ID, models.TaskStatusCompleted)
			_ = s.tasks.SetEscrowHeld(task.ID, false)
		} else {
			n, err := s.tasks.IncrementCompletions(task.ID)
			if err != nil {
				return nil, err
			}
			if n >= task.MaxCompletions {
				_ = s.tasks.SetStatus(task.ID, models.TaskStatusCompleted)
				_ = s.tasks.SetEscrowHeld(task.ID, false)
			} else {
				// Reopen for the remaining workers.
				_ = s.tasks.SetStatus(task.ID, models.TaskStatusApproved)
			}
		}
		s.log.Info("submission approved", "submission_id", submissionID, "task_id", task.ID, "payout", sub.RewardAmount)
	} else {
		if task.TaskType == models.TaskTypeSingle && task.AssignedUserID != nil && *task.AssignedUserID == sub.UserID {
			_ = s.tasks.Unassign(task.ID)
		} else {
			_ = s.tasks.SetStatus(task.ID, models.TaskStatusApproved)
		}
		s.log.Info("submission rejected", "submission_id", submissionID, "task_id", task.ID)
	}

	return s.subs.GetByID(submissionID)
}
