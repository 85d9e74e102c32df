package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/models"
)

// ErrNotFound is returned for unknown task or submission ids.
var ErrNotFound = errors.New("not found")

// TaskStore keeps all tasks in memory, insertion-ordered. It performs no
// transition validation: legality of status changes is the lifecycle
// engine's responsibility.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*models.Task
	order []uuid.UUID
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uuid.UUID]*models.Task)}
}

// Create assigns id and timestamps, defaults status to pending and
// completions to zero, and stores a copy of the task.
func (s *TaskStore) Create(t *models.Task) *models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.Status == "" {
		cp.Status = models.TaskStatusPending
	}
	cp.CurrentCompletions = 0
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.tasks[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	out := cp
	return &out
}

func (s *TaskStore) GetByID(id uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// SetStatus updates the status and UpdatedAt.
func (s *TaskStore) SetStatus(id uuid.UUID, status string) error {
	return s.mutate(id, func(t *models.Task) {
		t.Status = status
	})
}

// Assign sets the assignment fields and moves the task to in_progress.
func (s *TaskStore) Assign(id, userID uuid.UUID, userName string) error {
	return s.mutate(id, func(t *models.Task) {
		uid := userID
		t.AssignedUserID = &uid
		t.AssignedUserName = userName
		t.Status = models.TaskStatusInProgress
	})
}

// Unassign clears the assignment fields and reverts the task to approved.
func (s *TaskStore) Unassign(id uuid.UUID) error {
	return s.mutate(id, func(t *models.Task) {
		t.AssignedUserID = nil
		t.AssignedUserName = ""
		t.Status = models.TaskStatusApproved
	})
}

// IncrementCompletions bumps the completion count and returns the new value.
func (s *TaskStore) IncrementCompletions(id uuid.UUID) (int, error) {
	var n int
	err := s.mutate(id, func(t *models.Task) {
		t.CurrentCompletions++
		n = t.CurrentCompletions
	})
	return n, err
}

func (s *TaskStore) SetEscrowHeld(id uuid.UUID, held bool) error {
	return s.mutate(id, func(t *models.Task) {
		t.IsEscrowHeld = held
	})
}

func (s *TaskStore) mutate(id uuid.UUID, fn func(*models.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	fn(t)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ListAvailable returns approved tasks a worker could still pick up:
// unassigned single tasks and multiple tasks below their completion cap.
func (s *TaskStore) ListAvailable() []*models.Task {
	return s.list(func(t *models.Task) bool {
		if t.Status != models.TaskStatusApproved {
			return false
		}
		if t.TaskType == models.TaskTypeSingle {
			return t.AssignedUserID == nil
		}
		return t.CurrentCompletions < t.MaxCompletions
	})
}

// ListByUploader returns the uploader's tasks, newest first.
func (s *TaskStore) ListByUploader(uploaderID uuid.UUID) []*models.Task {
	return s.list(func(t *models.Task) bool { return t.UploaderID == uploaderID })
}

// ListPending returns tasks awaiting admin approval, newest first.
func (s *TaskStore) ListPending() []*models.Task {
	return s.list(func(t *models.Task) bool { return t.Status == models.TaskStatusPending })
}

// ListAll returns every task, newest first.
func (s *TaskStore) ListAll() []*models.Task {
	return s.list(func(*models.Task) bool { return true })
}

func (s *TaskStore) list(keep func(*models.Task) bool) []*models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Task
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.tasks[s.order[i]]
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}
