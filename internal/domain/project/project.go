package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusPlanning  = "PLANNING"
	StatusOnHold    = "ONHOLD"
)

type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Covers both a missing id and an id owned by someone else. Callers must not
// be able to tell the two apart.
var ErrNotFound = errors.New("project not found")

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"required,min=10,max=500"`
	Status      string `json:"status" binding:"omitempty,oneof=ACTIVE COMPLETED PLANNING ONHOLD"`
}

// UpdateProjectRequest is a patch: every field optional, absent fields are
// left untouched. Unknown JSON keys are ignored on this path.
type UpdateProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description" binding:"omitempty,min=10,max=500"`
	Status      *string `json:"status" binding:"omitempty,oneof=ACTIVE COMPLETED PLANNING ONHOLD"`
}

func NewFromCreateRequest(ownerID string, req CreateProjectRequest) Project {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusActive
	}

	return Project{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
