package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
	"github.com/taskflow/backend/internal/store"
)

// TaskHandler serves the task and submission endpoints. Every mutation goes
// through the lifecycle engine; the handler only translates HTTP.
type TaskHandler struct {
	engine *services.LifecycleService
	tasks  *store.TaskStore
	subs   *store.SubmissionStore
	log    *slog.Logger
}

func NewTaskHandler(engine *services.LifecycleService, tasks *store.TaskStore, subs *store.SubmissionStore, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{engine: engine, tasks: tasks, subs: subs, log: log}
}

type createTaskRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Reward         int64    `json:"reward"`
	TaskType       string   `json:"task_type"`
	MaxCompletions int      `json:"max_completions"`
	Requirements   []string `json:"requirements"`
	Tags           []string `json:"tags"`
}

// CreateTask handles POST /api/v1/tasks (uploader).
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	task, err := h.engine.CreateTask(r.Context(), u.ID, services.CreateTaskSpec{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Reward:         req.Reward,
		TaskType:       req.TaskType,
		MaxCompletions: req.MaxCompletions,
		Requirements:   req.Requirements,
		Tags:           req.Tags,
	})
	if err != nil {
		h.writeEngineError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// ListAvailable handles GET /api/v1/tasks/available (worker).
func (h *TaskHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmptyTasks(h.tasks.ListAvailable()))
}

// ListMine handles GET /api/v1/tasks/mine (uploader).
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	writeJSON(w, http.StatusOK, orEmptyTasks(h.tasks.ListByUploader(u.ID)))
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.GetByID(id)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ApproveTask handles POST /api/v1/tasks/{id}/approve (admin).
func (h *TaskHandler) ApproveTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.ApproveTask)
}

// RejectTask handles POST /api/v1/tasks/{id}/reject (admin).
func (h *TaskHandler) RejectTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.RejectTask)
}

// AssignTask handles POST /api/v1/tasks/{id}/assign (worker).
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.engine.AssignTask(r.Context(), id, u.ID, u.Name)
	if err != nil {
		h.writeEngineError(w, "assign task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UnassignTask handles POST /api/v1/tasks/{id}/unassign.
func (h *TaskHandler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.engine.UnassignTask)
}

type submitTaskRequest struct {
	SubmissionText string `json:"submission_text"`
	EvidenceURL    string `json:"evidence_url"`
}

// SubmitTask handles POST /api/v1/tasks/{id}/submissions (worker).
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req submitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	sub, err := h.engine.SubmitTask(r.Context(), id, u.ID, u.Name, req.SubmissionText, req.EvidenceURL)
	if err != nil {
		h.writeEngineError(w, "submit task", err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ListPendingSubmissions handles GET /api/v1/submissions/pending (admin).
func (h *TaskHandler) ListPendingSubmissions(w http.ResponseWriter, r *http.Request) {
	subs := h.subs.ListPending()
	if subs == nil {
		subs = []*models.TaskSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// ListMySubmissions handles GET /api/v1/submissions/mine (worker).
func (h *TaskHandler) ListMySubmissions(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	subs := h.subs.ListByUser(u.ID)
	if subs == nil {
		subs = []*models.TaskSubmission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

type auditRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

// AuditSubmission handles POST /api/v1/submissions/{id}/audit (admin).
func (h *TaskHandler) AuditSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	sub, err := h.engine.AuditSubmission(r.Context(), id, req.Decision, req.Notes)
	if err != nil {
		h.writeEngineError(w, "audit submission", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// transition runs a one-argument engine transition keyed by the path id.
func (h *TaskHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (*models.Task, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := op(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, "task transition", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// writeEngineError maps engine sentinel errors onto HTTP statuses.
func (h *TaskHandler) writeEngineError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient balance")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, "task already assigned")
	case errors.Is(err, services.ErrAlreadyAudited):
		writeError(w, http.StatusConflict, "submission already audited")
	case errors.Is(err, services.ErrQuotaExceeded):
		writeError(w, http.StatusForbidden, "monthly task quota exceeded")
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func orEmptyTasks(tasks []*models.Task) []*models.Task {
	if tasks == nil {
		return []*models.Task{}
	}
	return tasks
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
