// Package seed loads the demo accounts and sample tasks used for local
// development. Tasks go through the real lifecycle engine so seeded state
// satisfies every invariant.
package seed

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/ledger"
	"github.com/taskflow/backend/internal/models"
	"github.com/taskflow/backend/internal/services"
)

const demoPassword = "password"

var demoUsers = []struct {
	Email   string
	Name    string
	Role    string
	Balance int64
}{
	{"admin@taskflow.com", "Admin User", models.RoleAdmin, 0},
	{"uploader@taskflow.com", "Task Creator", models.RoleUploader, 500},
	{"worker@taskflow.com", "Task Worker", models.RoleWorker, 125},
}

// Run creates the demo users and two sample tasks (one approved, one left
// pending). Idempotent: a second call is a no-op.
func Run(users *auth.Repository, wallet *ledger.Ledger, engine *services.LifecycleService, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	if _, err := users.GetByEmail(demoUsers[0].Email); err == nil {
		log.Info("seed already applied, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var uploader *models.User
	for _, d := range demoUsers {
		u, err := users.Create(&models.User{
			Email:        d.Email,
			Name:         d.Name,
			Role:         d.Role,
			PasswordHash: string(hash),
			Plan:         models.PlanFree,
			IsApproved:   true,
		})
		if err != nil {
			return err
		}
		if d.Balance > 0 {
			wallet.Apply(&models.WalletTransaction{
				UserID:      u.ID,
				Type:        models.TxTypeDeposit,
				Amount:      d.Balance,
				Description: "Starting balance",
			})
		}
		if d.Role == models.RoleUploader {
			uploader = u
		}
	}

	ctx := context.Background()
	task, err := engine.CreateTask(ctx, uploader.ID, services.CreateTaskSpec{
		Title:        "Write Product Review",
		Description:  "Write a detailed review of our new mobile app on the App Store",
		Category:     "Content Creation",
		Reward:       25,
		TaskType:     models.TaskTypeSingle,
		Requirements: []string{"Must be authentic", "Include screenshots", "At least 100 words"},
		Tags:         []string{"review", "mobile", "app store"},
	})
	if err != nil {
		return err
	}
	if _, err := engine.ApproveTask(ctx, task.ID); err != nil {
		return err
	}

	_, err = engine.CreateTask(ctx, uploader.ID, services.CreateTaskSpec{
		Title:          "Social Media Post",
		Description:    "Create an engaging Instagram post about productivity tips",
		Category:       "Social Media",
		Reward:         15,
		TaskType:       models.TaskTypeMultiple,
		MaxCompletions: 3,
		Requirements:   []string{"Use provided hashtags", "Include call-to-action"},
		Tags:           []string{"instagram", "productivity", "social"},
	})
	if err != nil {
		return err
	}

	log.Info("seed data loaded", "users", len(demoUsers))
	return nil
}
