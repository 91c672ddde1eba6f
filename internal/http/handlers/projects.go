package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/codelens/taskhub/internal/cache"
	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/project"
	"github.com/codelens/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProjectStore interface {
	Create(ctx context.Context, q db.DBTX, p project.Project) error
	ListByOwner(ctx context.Context, q db.DBTX, ownerID string) ([]project.Project, error)
	GetByID(ctx context.Context, q db.DBTX, ownerID, id string) (project.Project, error)
	Update(ctx context.Context, q db.DBTX, ownerID, id string, patch project.UpdateProjectRequest) (project.Project, error)
	Delete(ctx context.Context, q db.DBTX, ownerID, id string) error
}

// TaskCascade is the slice of the task store that project deletion needs.
type TaskCascade interface {
	DeleteByProject(ctx context.Context, q db.DBTX, ownerID, projectID string) (int64, error)
}

type ProjectsHandler struct {
	projects  ProjectStore
	tasks     TaskCascade
	runner    TxRunner
	q         db.DBTX
	analytics *cache.AnalyticsCache
}

func NewProjectsHandler(projects ProjectStore, tasks TaskCascade, runner TxRunner, q db.DBTX, analytics *cache.AnalyticsCache) *ProjectsHandler {
	return &ProjectsHandler{
		projects:  projects,
		tasks:     tasks,
		runner:    runner,
		q:         q,
		analytics: analytics,
	}
}

func ownerFrom(ctx *gin.Context) (string, bool) {
	owner, ok := middlewares.UserIDFromContext(ctx)

	if !ok || owner == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return "", false
	}

	return owner, true
}

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	p := project.NewFromCreateRequest(owner, req)

	err := h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		return h.projects.Create(cctx, tx, p)
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.analytics.Invalidate(cctx, owner)

	RespondData(ctx, http.StatusCreated, p)
}

func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	projects, err := h.projects.ListByOwner(cctx, h.q, owner)

	if err != nil {
		RespondInternal(ctx, "Could not list projects")
		return
	}

	RespondData(ctx, http.StatusOK, projects)
}

func (h *ProjectsHandler) GetProject(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	p, err := h.projects.GetByID(cctx, h.q, owner, ctx.Param("id"))

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, p)
}

func (h *ProjectsHandler) UpdateProject(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	var patch project.UpdateProjectRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	var updated project.Project

	err := h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		var txErr error
		updated, txErr = h.projects.Update(cctx, tx, owner, ctx.Param("id"), patch)

		return txErr
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.analytics.Invalidate(cctx, owner)

	RespondData(ctx, http.StatusOK, updated)
}

// DeleteProject removes the project's tasks first, then the project row, in
// one transaction. A failure at any step rolls back both deletes.
func (h *ProjectsHandler) DeleteProject(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	id := ctx.Param("id")

	err := h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		_, txErr := h.tasks.DeleteByProject(cctx, tx, owner, id)

		if txErr != nil {
			return txErr
		}

		return h.projects.Delete(cctx, tx, owner, id)
	})

	if err != nil {
		RespondDomainError(ctx, err)
		return
	}

	h.analytics.Invalidate(cctx, owner)

	RespondOK(ctx)
}
