package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	OwnerID     string    `json:"ownerId"` // denormalized from the parent project
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Same information-hiding rule as projects: foreign ownership looks like
// absence.
var ErrNotFound = errors.New("task not found")

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"required,min=5,max=300"`
	Status      string `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	DueDate     string `json:"dueDate" binding:"required,todayorlater"`
}

// UpdateTaskRequest is a patch. ProjectID and OwnerID are deliberately not
// patchable: a task can never move between projects or owners, which keeps
// the denormalized owner column trustworthy for ownership checks.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,min=5,max=300"`
	Status      *string `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	DueDate     *string `json:"dueDate" binding:"omitempty,todayorlater"`
}

// Patch is the storage-level form of UpdateTaskRequest with the due date
// already parsed. Built by the handler after validation.
type Patch struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

// DueReminder is one row of the reminder scan: a not-done task inside the
// due window joined with its owner's email.
type DueReminder struct {
	TaskID       string
	Title        string
	DueDate      time.Time
	ProjectTitle string
	OwnerEmail   string
}

// ParseDueDate accepts a plain date or a full RFC 3339 timestamp.
func ParseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)

	if err != nil {
		return time.Time{}, errors.New("due date must be YYYY-MM-DD or RFC 3339")
	}

	return t, nil
}

// BeforeToday reports whether t falls strictly before local midnight today.
func BeforeToday(t time.Time) bool {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return t.Before(midnight)
}

func NewFromCreateRequest(ownerID, projectID string, req CreateTaskRequest, dueDate time.Time) Task {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusTodo
	}

	return Task{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
