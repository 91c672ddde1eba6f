package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/codelens/taskhub/internal/cache"
	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/project"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/gin-gonic/gin"
)

type TaskStore interface {
	Create(ctx context.Context, q db.DBTX, t task.Task) error
	ListByProject(ctx context.Context, q db.DBTX, ownerID, projectID string) ([]task.Task, error)
	ListByStatus(ctx context.Context, q db.DBTX, ownerID, status string) ([]task.Task, error)
	Update(ctx context.Context, q db.DBTX, ownerID, taskID string, patch task.Patch) (task.Task, error)
	Delete(ctx context.Context, q db.DBTX, ownerID, taskID string) error
}

// ProjectGetter is the slice of the project store task creation needs for
// the parent ownership check.
type ProjectGetter interface {
	GetByID(ctx context.Context, q db.DBTX, ownerID, id string) (project.Project, error)
}

type TasksHandler struct {
	tasks     TaskStore
	projects  ProjectGetter
	runner    TxRunner
	q         db.DBTX
	analytics *cache.AnalyticsCache
}

func NewTasksHandler(tasks TaskStore, projects ProjectGetter, runner TxRunner, q db.DBTX, analytics *cache.AnalyticsCache) *TasksHandler {
	return &TasksHandler{
		tasks:     tasks,
		projects:  projects,
		runner:    runner,
		q:         q,
		analytics: analytics,
	}
}

// CreateTask verifies the parent project inside the same transaction as the
// insert. A project owned by someone else reads as not found.
func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the todayorlater rule already vetted the raw value
	dueDate, err := task.ParseDueDate(req.DueDate)

	if err != nil {
		RespondValidation(ctx, []FieldError{{Field: "dueDate", Message: err.Error()}})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	projectID := ctx.Param("projectId")

	t := task.NewFromCreateRequest(owner, projectID, req, dueDate)

	err = h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		_, txErr := h.projects.GetByID(cctx, tx, owner, projectID)

		if txErr != nil {
			return txErr
		}

		return h.tasks.Create(cctx, tx, t)
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.analytics.Invalidate(cctx, owner)

	RespondData(ctx, http.StatusCreated, t)
}

func (h *TasksHandler) ListTasksByProject(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	projectID := ctx.Param("projectId")

	// listing under a missing or foreign project is a 404, not an empty list
	_, err := h.projects.GetByID(cctx, h.q, owner, projectID)

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	tasks, err := h.tasks.ListByProject(cctx, h.q, owner, projectID)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	RespondData(ctx, http.StatusOK, tasks)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch := task.Patch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}

	if req.DueDate != nil {
		dueDate, err := task.ParseDueDate(*req.DueDate)

		if err != nil {
			RespondValidation(ctx, []FieldError{{Field: "dueDate", Message: err.Error()}})
			return
		}

		patch.DueDate = &dueDate
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	var updated task.Task

	err := h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		var txErr error
		updated, txErr = h.tasks.Update(cctx, tx, owner, ctx.Param("taskId"), patch)

		return txErr
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.analytics.Invalidate(cctx, owner)

	RespondData(ctx, http.StatusOK, updated)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		return h.tasks.Delete(cctx, tx, owner, ctx.Param("taskId"))
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.analytics.Invalidate(cctx, owner)

	RespondOK(ctx)
}

// FilterTasksByStatus spans all of the owner's projects. Unknown status
// values yield an empty list rather than an error.
func (h *TasksHandler) FilterTasksByStatus(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	tasks, err := h.tasks.ListByStatus(cctx, h.q, owner, ctx.Param("status"))

	if err != nil {
		RespondInternal(ctx, "Could not filter tasks")
		return
	}

	RespondData(ctx, http.StatusOK, tasks)
}
