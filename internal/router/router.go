package router

import (
	"net/http"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/handlers"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/models"
)

// New builds the API mux. The middleware chain on every protected route is
// Authenticate -> RequireRole -> handler, so the access gate always sits in
// front of the lifecycle engine.
func New(
	authHandler *auth.Handler,
	taskHandler *handlers.TaskHandler,
	walletHandler *handlers.WalletHandler,
	adminHandler *handlers.AdminHandler,
	authn func(http.Handler) http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	admin := middleware.RequireRole(models.RoleAdmin)
	uploader := middleware.RequireRole(models.RoleUploader)
	worker := middleware.RequireRole(models.RoleWorker)
	anyRole := middleware.RequireRole()

	handle := func(pattern string, gate func(http.Handler) http.Handler, h http.HandlerFunc) {
		mux.Handle(pattern, authn(gate(h)))
	}

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /api/v1/auth/me", authn(http.HandlerFunc(authHandler.Me)))

	// Tasks
	handle("POST /api/v1/tasks", uploader, taskHandler.CreateTask)
	handle("GET /api/v1/tasks", admin, adminHandler.ListAllTasks)
	handle("GET /api/v1/tasks/pending", admin, adminHandler.ListPendingTasks)
	handle("GET /api/v1/tasks/available", worker, taskHandler.ListAvailable)
	handle("GET /api/v1/tasks/mine", uploader, taskHandler.ListMine)
	handle("GET /api/v1/tasks/{id}", anyRole, taskHandler.GetTask)
	handle("POST /api/v1/tasks/{id}/approve", admin, taskHandler.ApproveTask)
	handle("POST /api/v1/tasks/{id}/reject", admin, taskHandler.RejectTask)
	handle("POST /api/v1/tasks/{id}/assign", worker, taskHandler.AssignTask)
	handle("POST /api/v1/tasks/{id}/unassign", worker, taskHandler.UnassignTask)
	handle("POST /api/v1/tasks/{id}/submissions", worker, taskHandler.SubmitTask)

	// Submissions
	handle("GET /api/v1/submissions/pending", admin, taskHandler.ListPendingSubmissions)
	handle("GET /api/v1/submissions/mine", worker, taskHandler.ListMySubmissions)
	handle("POST /api/v1/submissions/{id}/audit", admin, taskHandler.AuditSubmission)

	// Wallet
	handle("GET /api/v1/wallet", anyRole, walletHandler.GetWallet)
	handle("POST /api/v1/wallet/deposit", anyRole, walletHandler.Deposit)
	handle("POST /api/v1/wallet/withdraw", anyRole, walletHandler.Withdraw)

	// Admin: user approval
	handle("GET /api/v1/users/pending", admin, adminHandler.ListPendingUsers)
	handle("POST /api/v1/users/{id}/approve", admin, adminHandler.ApproveUser)

	return mux
}
