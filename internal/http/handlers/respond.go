package handlers

import (
	"errors"
	"net/http"

	"github.com/codelens/taskhub/internal/domain/project"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/codelens/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Every response uses the same envelope: {success, data?} on the happy path,
// {success, message, ...detail} on failure.

func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondOK is for operations whose only result is that they happened
// (deletes).
func RespondOK(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func RespondValidation(ctx *gin.Context, fields []FieldError) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondNotFound(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": message,
	})
}

func RespondConflict(ctx *gin.Context, message, field, value string) {
	ctx.JSON(http.StatusConflict, gin.H{
		"success": false,
		"message": message,
		"field":   field,
		"value":   value,
	})
}

// No internal detail leaks through this one.
func RespondInternal(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": message,
	})
}

// RespondDomainError is the single mapping from a failed unit of work to an
// HTTP response. Handlers with extra context (e.g. the conflicting email
// value) call the specific helpers instead.
func RespondDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		RespondNotFound(ctx, "Project not found")
	case errors.Is(err, task.ErrNotFound):
		RespondNotFound(ctx, "Task not found")
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "Email already registered", "email", "")
	default:
		RespondInternal(ctx, "Something went wrong")
	}
}
