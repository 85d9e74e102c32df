package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/models"
)

// SubmissionStore keeps task submissions in memory, insertion-ordered.
// Submissions are never deleted; their status changes exactly once.
type SubmissionStore struct {
	mu    sync.Mutex
	subs  map[uuid.UUID]*models.TaskSubmission
	order []uuid.UUID
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{subs: make(map[uuid.UUID]*models.TaskSubmission)}
}

// Create assigns id and timestamp, defaults status to submitted, and stores
// a copy. RewardAmount must already be snapshotted by the caller.
func (s *SubmissionStore) Create(sub *models.TaskSubmission) *models.TaskSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	if cp.Status == "" {
		cp.Status = models.SubmissionStatusSubmitted
	}
	cp.SubmittedAt = time.Now().UTC()
	s.subs[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	out := cp
	return &out
}

func (s *SubmissionStore) GetByID(id uuid.UUID) (*models.TaskSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

// SetStatus records the audit outcome and stamps AuditedAt.
func (s *SubmissionStore) SetStatus(id uuid.UUID, status, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	sub.AuditNotes = notes
	now := time.Now().UTC()
	sub.AuditedAt = &now
	return nil
}

// ListPending returns unaudited submissions, newest first.
func (s *SubmissionStore) ListPending() []*models.TaskSubmission {
	return s.list(func(sub *models.TaskSubmission) bool {
		return sub.Status == models.SubmissionStatusSubmitted
	})
}

// ListByTask returns all submissions for a task, newest first.
func (s *SubmissionStore) ListByTask(taskID uuid.UUID) []*models.TaskSubmission {
	return s.list(func(sub *models.TaskSubmission) bool { return sub.TaskID == taskID })
}

// ListByUser returns a worker's submissions, newest first.
func (s *SubmissionStore) ListByUser(userID uuid.UUID) []*models.TaskSubmission {
	return s.list(func(sub *models.TaskSubmission) bool { return sub.UserID == userID })
}

func (s *SubmissionStore) list(keep func(*models.TaskSubmission) bool) []*models.TaskSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TaskSubmission
	for i := len(s.order) - 1; i >= 0; i-- {
		sub := s.subs[s.order[i]]
		if keep(sub) {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out
}
