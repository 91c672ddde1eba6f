package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type TasksRepo struct {
	prom *observability.Prom
}

func NewTasksRepo(prom *observability.Prom) *TasksRepo {
	return &TasksRepo{prom: prom}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const taskColumns = `id, project_id, owner_id, title, description, status, due_date, created_at, updated_at`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task

	err := row.Scan(&t.ID, &t.ProjectID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func (r *TasksRepo) collect(rows pgx.Rows) ([]task.Task, error) {
	defer rows.Close()

	out := make([]task.Task, 0)

	for rows.Next() {
		t, err := scanTask(rows)

		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *TasksRepo) Create(ctx context.Context, q db.DBTX, t task.Task) error {
	return r.observe("tasks.create", func() error {
		_, err := q.Exec(ctx,
			`INSERT INTO tasks (id, project_id, owner_id, title, description, status, due_date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.ProjectID, t.OwnerID, t.Title, t.Description, t.Status, t.DueDate, t.CreatedAt, t.UpdatedAt)
		return err
	})
}

func (r *TasksRepo) ListByProject(ctx context.Context, q db.DBTX, ownerID, projectID string) ([]task.Task, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("tasks.list_by_project", func() error {
		rows, err = q.Query(ctx,
			`SELECT `+taskColumns+`
			 FROM tasks
			 WHERE project_id = $1 AND owner_id = $2
			 ORDER BY due_date ASC, id ASC`,
			projectID, ownerID,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	return r.collect(rows)
}

// ListByStatus returns the owner's matching tasks across all projects. An
// unknown status value just yields an empty list.
func (r *TasksRepo) ListByStatus(ctx context.Context, q db.DBTX, ownerID, status string) ([]task.Task, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("tasks.list_by_status", func() error {
		rows, err = q.Query(ctx,
			`SELECT `+taskColumns+`
			 FROM tasks
			 WHERE owner_id = $1 AND status = $2
			 ORDER BY due_date ASC, id ASC`,
			ownerID, status,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	return r.collect(rows)
}

// Update scopes on the task's own owner column. The task/project link is
// immutable after creation, so re-checking the parent here would prove
// nothing the owner column doesn't already.
func (r *TasksRepo) Update(ctx context.Context, q db.DBTX, ownerID, taskID string, patch task.Patch) (task.Task, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{taskID, ownerID}

	argsPosition := 3

	if patch.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argsPosition))
		args = append(args, *patch.Title)
		argsPosition++
	}

	if patch.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argsPosition))
		args = append(args, *patch.Description)
		argsPosition++
	}

	if patch.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *patch.Status)
		argsPosition++
	}

	if patch.DueDate != nil {
		sets = append(sets, fmt.Sprintf("due_date = $%d", argsPosition))
		args = append(args, *patch.DueDate)
		argsPosition++
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND owner_id = $2 RETURNING ` + taskColumns

	var t task.Task
	var err error

	err = r.observe("tasks.update", func() error {
		t, err = scanTask(q.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, q db.DBTX, ownerID, taskID string) error {
	var tag pgconn.CommandTag

	err := r.observe("tasks.delete", func() error {
		var e error
		tag, e = q.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)

		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

// DeleteByProject is the cascade step of project deletion. It must run in the
// same transaction as, and before, the project row delete.
func (r *TasksRepo) DeleteByProject(ctx context.Context, q db.DBTX, ownerID, projectID string) (int64, error) {
	var tag pgconn.CommandTag

	err := r.observe("tasks.delete_by_project", func() error {
		var e error
		tag, e = q.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1 AND owner_id = $2`, projectID, ownerID)

		return e
	})

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// DueSoon lists not-done tasks with a due date inside [from, to] joined with
// their owner's email, for the reminder worker.
func (r *TasksRepo) DueSoon(ctx context.Context, q db.DBTX, from, to time.Time) ([]task.DueReminder, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("tasks.due_soon", func() error {
		rows, err = q.Query(ctx,
			`SELECT t.id, t.title, t.due_date, p.title, u.email
			 FROM tasks t
			 JOIN projects p ON p.id = t.project_id
			 JOIN users u ON u.id = t.owner_id
			 WHERE t.status <> 'done' AND t.due_date >= $1 AND t.due_date <= $2
			 ORDER BY t.due_date ASC, t.id ASC`,
			from, to,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]task.DueReminder, 0)

	for rows.Next() {
		var rem task.DueReminder

		if scanErr := rows.Scan(&rem.TaskID, &rem.Title, &rem.DueDate, &rem.ProjectTitle, &rem.OwnerEmail); scanErr != nil {
			return nil, scanErr
		}

		out = append(out, rem)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}
