package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/store"
)

// AdminHandler serves the admin dashboard endpoints: user approval and the
// review queues.
type AdminHandler struct {
	authSvc auth.Service
	users   *auth.Repository
	tasks   *store.TaskStore
	log     *slog.Logger
}

func NewAdminHandler(authSvc auth.Service, users *auth.Repository, tasks *store.TaskStore, log *slog.Logger) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{authSvc: authSvc, users: users, tasks: tasks, log: log}
}

// ListPendingUsers handles GET /api/v1/users/pending.
func (h *AdminHandler) ListPendingUsers(w http.ResponseWriter, r *http.Request) {
	users := h.users.ListPendingApproval()
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// ApproveUser handles POST /api/v1/users/{id}/approve.
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.authSvc.ApproveUser(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("approve user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	u, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ListPendingTasks handles GET /api/v1/tasks/pending.
func (h *AdminHandler) ListPendingTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmptyTasks(h.tasks.ListPending()))
}

// ListAllTasks handles GET /api/v1/tasks.
func (h *AdminHandler) ListAllTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmptyTasks(h.tasks.ListAll()))
}
