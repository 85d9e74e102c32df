package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
	"github.com/taskflow/backend/internal/store"
)

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

type handlerFixture struct {
	handler  *TaskHandler
	tasks    *store.TaskStore
	wallet   *ledger.Ledger
	users    *auth.Repository
	uploader *models.User
	worker   *models.User
	admin    *models.User
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		tasks:  store.NewTaskStore(),
		wallet: ledger.New(),
		users:  auth.NewRepository(),
	}
	subs := store.NewSubmissionStore()
	engine := services.NewLifecycleService(f.tasks, subs, f.wallet, f.users, nil)
	f.handler = NewTaskHandler(engine, f.tasks, subs, nil)

	mk := func(role string) *models.User {
		u, err := f.users.Create(&models.User{
			Email:      role + "@example.com",
			Name:       role,
			Role:       role,
			Plan:       models.PlanPro,
			IsApproved: true,
		})
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		return u
	}
	f.uploader = mk(models.RoleUploader)
	f.worker = mk(models.RoleWorker)
	f.admin = mk(models.RoleAdmin)

	f.wallet.Apply(&models.WalletTransaction{UserID: f.uploader.ID, Type: models.TxTypeDeposit, Amount: 100})
	return f
}

// do runs a handler as if it were routed, with the caller in context and an
// optional {id} path value.
func do(h http.HandlerFunc, caller *models.User, method string, body any, id string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/", &buf)
	if id != "" {
		req.SetPathValue("id", id)
	}
	if caller != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), caller))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func (f *handlerFixture) createTask(t *testing.T, body map[string]any) *models.Task {
	t.Helper()
	rec := do(f.handler.CreateTask, f.uploader, http.MethodPost, body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d, body %s", rec.Code, rec.Body.String())
	}
	var task models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return &task
}

// ---------------------------------------------------------------------------
// tasks
// ---------------------------------------------------------------------------

func TestCreateTaskEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	task := f.createTask(t, map[string]any{"title": "Review", "reward": 25, "task_type": "single"})
	if task.Status != models.TaskStatusPending {
		t.Errorf("status: got %s, want pending", task.Status)
	}
	if got := f.wallet.Balance(f.uploader.ID); got != 75 {
		t.Errorf("uploader balance: got %d, want 75", got)
	}
}

func TestCreateTaskEndpointErrors(t *testing.T) {
	f := newHandlerFixture(t)

	rec := do(f.handler.CreateTask, f.uploader, http.MethodPost, map[string]any{"reward": 25, "task_type": "single"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing title: got %d, want 400", rec.Code)
	}

	rec = do(f.handler.CreateTask, f.uploader, http.MethodPost, map[string]any{"title": "big", "reward": 500, "task_type": "single"}, "")
	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("insufficient balance: got %d, want 402", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	req = req.WithContext(middleware.WithUser(req.Context(), f.uploader))
	rec = httptest.NewRecorder()
	f.handler.CreateTask(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: got %d, want 400", rec.Code)
	}
}

func TestGetTaskEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	task := f.createTask(t, map[string]any{"title": "Review", "reward": 10, "task_type": "single"})

	rec := do(f.handler.GetTask, f.worker, http.MethodGet, nil, task.ID.String())
	if rec.Code != http.StatusOK {
		t.Errorf("get: got %d, want 200", rec.Code)
	}
	rec = do(f.handler.GetTask, f.worker, http.MethodGet, nil, uuid.New().String())
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", rec.Code)
	}
	rec = do(f.handler.GetTask, f.worker, http.MethodGet, nil, "not-a-uuid")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rec.Code)
	}
}

func TestTransitionEndpointsMapEngineErrors(t *testing.T) {
	f := newHandlerFixture(t)
	task := f.createTask(t, map[string]any{"title": "Review", "reward": 10, "task_type": "single"})

	rec := do(f.handler.ApproveTask, f.admin, http.MethodPost, nil, task.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: got %d, body %s", rec.Code, rec.Body.String())
	}
	rec = do(f.handler.ApproveTask, f.admin, http.MethodPost, nil, task.ID.String())
	if rec.Code != http.StatusConflict {
		t.Errorf("double approve: got %d, want 409", rec.Code)
	}
	rec = do(f.handler.RejectTask, f.admin, http.MethodPost, nil, uuid.New().String())
	if rec.Code != http.StatusNotFound {
		t.Errorf("reject unknown: got %d, want 404", rec.Code)
	}
}

func TestListAvailableReturnsEmptyArray(t *testing.T) {
	f := newHandlerFixture(t)

	rec := do(f.handler.ListAvailable, f.worker, http.MethodGet, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("empty list should encode as [], got %q", got)
	}
}

// ---------------------------------------------------------------------------
// submissions
// ---------------------------------------------------------------------------

func TestSubmissionFlowEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	task := f.createTask(t, map[string]any{"title": "Review", "reward": 25, "task_type": "single"})
	do(f.handler.ApproveTask, f.admin, http.MethodPost, nil, task.ID.String())

	rec := do(f.handler.AssignTask, f.worker, http.MethodPost, nil, task.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = do(f.handler.SubmitTask, f.worker, http.MethodPost, map[string]any{"submission_text": "done"}, task.ID.String())
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: got %d, body %s", rec.Code, rec.Body.String())
	}
	var sub models.TaskSubmission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if sub.RewardAmount != 25 {
		t.Errorf("reward snapshot: got %d, want 25", sub.RewardAmount)
	}

	rec = do(f.handler.ListPendingSubmissions, f.admin, http.MethodGet, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pending: got %d", rec.Code)
	}

	rec = do(f.handler.AuditSubmission, f.admin, http.MethodPost, map[string]any{"decision": "approved"}, sub.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("audit: got %d, body %s", rec.Code, rec.Body.String())
	}
	if got := f.wallet.Balance(f.worker.ID); got != 25 {
		t.Errorf("worker balance: got %d, want 25", got)
	}

	// A second audit of the same submission is a conflict.
	rec = do(f.handler.AuditSubmission, f.admin, http.MethodPost, map[string]any{"decision": "approved"}, sub.ID.String())
	if rec.Code != http.StatusConflict {
		t.Errorf("re-audit: got %d, want 409", rec.Code)
	}
	if got := f.wallet.Balance(f.worker.ID); got != 25 {
		t.Errorf("worker balance after re-audit: got %d, want 25", got)
	}
}

func TestAuditEndpointValidatesDecision(t *testing.T) {
	f := newHandlerFixture(t)
	task := f.createTask(t, map[string]any{"title": "Post", "reward": 10, "task_type": "multiple", "max_completions": 2})
	do(f.handler.ApproveTask, f.admin, http.MethodPost, nil, task.ID.String())
	rec := do(f.handler.SubmitTask, f.worker, http.MethodPost, map[string]any{"submission_text": "done"}, task.ID.String())
	var sub models.TaskSubmission
	json.Unmarshal(rec.Body.Bytes(), &sub)

	rec = do(f.handler.AuditSubmission, f.admin, http.MethodPost, map[string]any{"decision": "maybe"}, sub.ID.String())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad decision: got %d, want 400", rec.Code)
	}
}
