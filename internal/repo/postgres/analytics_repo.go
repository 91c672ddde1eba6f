package postgres

import (
	"context"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/analytics"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
)

type AnalyticsRepo struct {
	prom *observability.Prom
}

func NewAnalyticsRepo(prom *observability.Prom) *AnalyticsRepo {
	return &AnalyticsRepo{prom: prom}
}

func (r *AnalyticsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Summary aggregates the owner's projects and tasks into the fixed bucket
// shape. Totals come from COUNT(*), so rows with an unrecognized status still
// contribute to the totals even though no bucket picks them up.
func (r *AnalyticsRepo) Summary(ctx context.Context, q db.DBTX, ownerID string) (analytics.Summary, error) {
	var out analytics.Summary

	err := r.observe("analytics.totals", func() error {
		return q.QueryRow(ctx,
			`SELECT
				(SELECT COUNT(*) FROM projects WHERE owner_id = $1),
				(SELECT COUNT(*) FROM tasks WHERE owner_id = $1)`,
			ownerID,
		).Scan(&out.TotalProjects, &out.TotalTasks)
	})

	if err != nil {
		return analytics.Summary{}, err
	}

	if out.TotalProjects > 0 {
		err = r.groupProjects(ctx, q, ownerID, &out.Projects)

		if err != nil {
			return analytics.Summary{}, err
		}
	}

	if out.TotalTasks > 0 {
		err = r.groupTasks(ctx, q, ownerID, &out.Tasks)

		if err != nil {
			return analytics.Summary{}, err
		}
	}

	return out, nil
}

// Project statuses are grouped case-insensitively, mirroring how clients have
// historically sent mixed-case values.
func (r *AnalyticsRepo) groupProjects(ctx context.Context, q db.DBTX, ownerID string, buckets *analytics.ProjectBuckets) error {
	var rows pgx.Rows
	var err error

	err = r.observe("analytics.project_buckets", func() error {
		rows, err = q.Query(ctx,
			`SELECT LOWER(status), COUNT(*)
			 FROM projects
			 WHERE owner_id = $1
			 GROUP BY LOWER(status)`,
			ownerID,
		)
		return err
	})

	if err != nil {
		return err
	}

	defer rows.Close()

	for rows.Next() {
		var status string
		var count int

		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return scanErr
		}

		// unknown statuses fall through: counted in totals only
		switch status {
		case "active":
			buckets.Active = count
		case "completed":
			buckets.Completed = count
		case "planning":
			buckets.Planning = count
		case "onhold":
			buckets.OnHold = count
		}
	}

	return rows.Err()
}

func (r *AnalyticsRepo) groupTasks(ctx context.Context, q db.DBTX, ownerID string, buckets *analytics.TaskBuckets) error {
	var rows pgx.Rows
	var err error

	err = r.observe("analytics.task_buckets", func() error {
		rows, err = q.Query(ctx,
			`SELECT status, COUNT(*)
			 FROM tasks
			 WHERE owner_id = $1
			 GROUP BY status`,
			ownerID,
		)
		return err
	})

	if err != nil {
		return err
	}

	defer rows.Close()

	for rows.Next() {
		var status string
		var count int

		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return scanErr
		}

		switch status {
		case task.StatusTodo:
			buckets.Todo = count
		case task.StatusInProgress:
			buckets.InProgress = count
		case task.StatusDone:
			buckets.Done = count
		}
	}

	return rows.Err()
}
