package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/models"
)

// ErrUserNotFound is returned for unknown user ids or emails.
var ErrUserNotFound = errors.New("user not found")

// Repository is the in-memory user directory. Users are never deleted.
type Repository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
}

func NewRepository() *Repository {
	return &Repository{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create stores a copy of the user, assigning id and timestamps.
// Emails are unique, case-insensitive.
func (r *Repository) Create(u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return nil, ErrDuplicateEmail
	}
	cp := *u
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.byID[cp.ID] = &cp
	r.byEmail[key] = cp.ID
	r.order = append(r.order, cp.ID)
	out := cp
	return &out, nil
}

func (r *Repository) GetByID(id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Repository) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

// SetApproved flips the admin-approval flag.
func (r *Repository) SetApproved(id uuid.UUID, approved bool) error {
	return r.mutate(id, func(u *models.User) {
		u.IsApproved = approved
	})
}

// IncrementMonthlyUsage counts one task created (uploader) or submitted
// (worker) against the user's monthly quota.
func (r *Repository) IncrementMonthlyUsage(id uuid.UUID) error {
	return r.mutate(id, func(u *models.User) {
		u.MonthlyTasksUsed++
	})
}

// ResetAllMonthlyUsage zeroes every user's monthly counter. Called by the
// scheduler on the first of each month.
func (r *Repository) ResetAllMonthlyUsage() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, u := range r.byID {
		u.MonthlyTasksUsed = 0
		u.UpdatedAt = now
	}
}

// ListPendingApproval returns unapproved non-admin users, newest first.
func (r *Repository) ListPendingApproval() []*models.User {
	return r.list(func(u *models.User) bool {
		return !u.IsApproved && u.Role != models.RoleAdmin
	})
}

// List returns all users, newest first.
func (r *Repository) List() []*models.User {
	return r.list(func(*models.User) bool { return true })
}

func (r *Repository) mutate(id uuid.UUID, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) list(keep func(*models.User) bool) []*models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for i := len(r.order) - 1; i >= 0; i-- {
		u := r.byID[r.order[i]]
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
