package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Roles are immutable after signup; admins are seeded, never registered.
const (
	RoleAdmin    = "admin"
	RoleUploader = "uploader"
	RoleWorker   = "worker"
)

// Subscription plan names.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
)

// UnlimitedTasks marks a plan without a monthly task quota.
const UnlimitedTasks = -1

// SubscriptionPlan describes the quota and fees attached to a plan.
// MonthlyFee is displayed to users but never charged by any flow.
type SubscriptionPlan struct {
	Name              string `json:"name"`
	WorkerTaskLimit   int    `json:"worker_task_limit"`
	UploaderTaskLimit int    `json:"uploader_task_limit"`
	RegistrationFee   int64  `json:"registration_fee"`
	MonthlyFee        int64  `json:"monthly_fee"`
}

// Plans is the closed set of subscription plans offered at signup.
var Plans = map[string]SubscriptionPlan{
	PlanFree:    {Name: PlanFree, WorkerTaskLimit: 5, UploaderTaskLimit: 3, RegistrationFee: 0, MonthlyFee: 0},
	PlanStarter: {Name: PlanStarter, WorkerTaskLimit: 50, UploaderTaskLimit: 25, RegistrationFee: 10, MonthlyFee: 29},
	PlanPro:     {Name: PlanPro, WorkerTaskLimit: UnlimitedTasks, UploaderTaskLimit: UnlimitedTasks, RegistrationFee: 25, MonthlyFee: 99},
}

type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	PasswordHash     string    `json:"-"`
	IsApproved       bool      `json:"is_approved"`
	Plan             string    `json:"subscription_plan"`
	MonthlyTasksUsed int       `json:"monthly_tasks_used"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MonthlyTaskLimit returns the user's quota for the role they hold,
// or UnlimitedTasks when the plan has none.
func (u *User) MonthlyTaskLimit() int {
	plan, ok := Plans[u.Plan]
	if !ok {
		return 0
	}
	if u.Role == RoleUploader {
		return plan.UploaderTaskLimit
	}
	return plan.WorkerTaskLimit
}
