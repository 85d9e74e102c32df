package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/models"
)

// Request/response structs use snake_case JSON throughout the API.

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Plan     string `json:"plan"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the persisted client identity: the UI stores it locally
// and rehydrates it at startup.
type UserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	IsApproved       bool   `json:"is_approved"`
	Plan             string `json:"subscription_plan"`
	MonthlyTasksUsed int    `json:"monthly_tasks_used"`
	MonthlyTaskLimit int    `json:"monthly_task_limit"`
	WalletBalance    int64  `json:"wallet_balance"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type Handler struct {
	svc    Service
	wallet *ledger.Ledger
	log    *slog.Logger
}

func NewHandler(svc Service, wallet *ledger.Ledger, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, wallet: wallet, log: log}
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
		http.Error(w, `{"error":"missing required fields"}`, http.StatusBadRequest)
		return
	}
	if req.Plan == "" {
		req.Plan = models.PlanFree
	}
	u, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name, req.Role, req.Plan)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			http.Error(w, `{"error":"email already registered"}`, http.StatusConflict)
			return
		}
		h.log.Error("register failed", "error", err)
		http.Error(w, `{"error":"registration failed"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, h.userToResponse(u))
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"missing email or password"}`, http.StatusBadRequest)
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		h.log.Error("login failed", "error", err)
		http.Error(w, `{"error":"login failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: h.userToResponse(u)})
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, h.userToResponse(u))
}

func (h *Handler) userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID.String(),
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		IsApproved:       u.IsApproved,
		Plan:             u.Plan,
		MonthlyTasksUsed: u.MonthlyTasksUsed,
		MonthlyTaskLimit: u.MonthlyTaskLimit(),
		WalletBalance:    h.wallet.Balance(u.ID),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
