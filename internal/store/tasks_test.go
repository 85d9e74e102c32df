package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/taskflow/backend/internal/models"
)

func TestTaskCreateDefaults(t *testing.T) {
	s := NewTaskStore()
	created := s.Create(&models.Task{Title: "x", TaskType: models.TaskTypeMultiple, MaxCompletions: 3, CurrentCompletions: 7})

	if created.ID == uuid.Nil {
		t.Error("create should assign an id")
	}
	if created.Status != models.TaskStatusPending {
		t.Errorf("status: got %s, want pending", created.Status)
	}
	if created.CurrentCompletions != 0 {
		t.Errorf("completions: got %d, want 0", created.CurrentCompletions)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("create should stamp timestamps")
	}
}

func TestTaskGetReturnsCopy(t *testing.T) {
	s := NewTaskStore()
	created := s.Create(&models.Task{Title: "x", TaskType: models.TaskTypeSingle})

	got, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Status = models.TaskStatusCompleted

	again, _ := s.GetByID(created.ID)
	if again.Status != models.TaskStatusPending {
		t.Error("mutating a returned task should not touch the store")
	}

	if _, err := s.GetByID(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestTaskAssignUnassign(t *testing.T) {
	s := NewTaskStore()
	created := s.Create(&models.Task{Title: "x", TaskType: models.TaskTypeSingle, Status: models.TaskStatusApproved})
	worker := uuid.New()

	if err := s.Assign(created.ID, worker, "Worker"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, _ := s.GetByID(created.ID)
	if got.Status != models.TaskStatusInProgress {
		t.Errorf("status: got %s, want in_progress", got.Status)
	}
	if got.AssignedUserID == nil || *got.AssignedUserID != worker {
		t.Error("assignment fields not set")
	}

	if err := s.Unassign(created.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	got, _ = s.GetByID(created.ID)
	if got.Status != models.TaskStatusApproved || got.AssignedUserID != nil || got.AssignedUserName != "" {
		t.Errorf("unassigned task: status %s, assignee %v", got.Status, got.AssignedUserID)
	}
}

func TestTaskIncrementCompletions(t *testing.T) {
	s := NewTaskStore()
	created := s.Create(&models.Task{Title: "x", TaskType: models.TaskTypeMultiple, MaxCompletions: 2})

	for want := 1; want <= 2; want++ {
		n, err := s.IncrementCompletions(created.ID)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if n != want {
			t.Errorf("completions: got %d, want %d", n, want)
		}
	}
	if _, err := s.IncrementCompletions(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestTaskListAvailable(t *testing.T) {
	s := NewTaskStore()
	worker := uuid.New()

	open := s.Create(&models.Task{Title: "open single", TaskType: models.TaskTypeSingle, Status: models.TaskStatusApproved})
	s.Create(&models.Task{Title: "pending", TaskType: models.TaskTypeSingle})
	taken := s.Create(&models.Task{Title: "taken single", TaskType: models.TaskTypeSingle, Status: models.TaskStatusApproved})
	s.Assign(taken.ID, worker, "Worker")
	slots := s.Create(&models.Task{Title: "open multiple", TaskType: models.TaskTypeMultiple, MaxCompletions: 2, Status: models.TaskStatusApproved})
	full := s.Create(&models.Task{Title: "full multiple", TaskType: models.TaskTypeMultiple, MaxCompletions: 1, Status: models.TaskStatusApproved})
	s.IncrementCompletions(full.ID)

	got := s.ListAvailable()
	if len(got) != 2 {
		t.Fatalf("available: got %d tasks, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != slots.ID || got[1].ID != open.ID {
		t.Errorf("available: got [%s, %s]", got[0].Title, got[1].Title)
	}
}

func TestTaskListFilters(t *testing.T) {
	s := NewTaskStore()
	mine := uuid.New()
	theirs := uuid.New()

	s.Create(&models.Task{Title: "a", TaskType: models.TaskTypeSingle, UploaderID: mine})
	s.Create(&models.Task{Title: "b", TaskType: models.TaskTypeSingle, UploaderID: theirs, Status: models.TaskStatusApproved})
	s.Create(&models.Task{Title: "c", TaskType: models.TaskTypeSingle, UploaderID: mine})

	if got := s.ListByUploader(mine); len(got) != 2 {
		t.Errorf("by uploader: got %d, want 2", len(got))
	}
	if got := s.ListPending(); len(got) != 2 {
		t.Errorf("pending: got %d, want 2", len(got))
	}
	if got := s.ListAll(); len(got) != 3 {
		t.Errorf("all: got %d, want 3", len(got))
	}
}
