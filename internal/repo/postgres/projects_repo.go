package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/project"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ProjectsRepo struct {
	prom *observability.Prom
}

func NewProjectsRepo(prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{prom: prom}
}

func (r *ProjectsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const projectColumns = `id, owner_id, title, description, status, created_at, updated_at`

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project

	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt)

	return p, err
}

func (r *ProjectsRepo) Create(ctx context.Context, q db.DBTX, p project.Project) error {
	return r.observe("projects.create", func() error {
		_, err := q.Exec(ctx,
			`INSERT INTO projects (id, owner_id, title, description, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.OwnerID, p.Title, p.Description, p.Status, p.CreatedAt, p.UpdatedAt)
		return err
	})
}

func (r *ProjectsRepo) ListByOwner(ctx context.Context, q db.DBTX, ownerID string) ([]project.Project, error) {
	var rows pgx.Rows
	var err error

	err = r.observe("projects.list_by_owner", func() error {
		rows, err = q.Query(ctx,
			`SELECT `+projectColumns+`
			 FROM projects
			 WHERE owner_id = $1
			 ORDER BY created_at ASC, id ASC`,
			ownerID,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]project.Project, 0)

	for rows.Next() {
		p, scanErr := scanProject(rows)

		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

// GetByID filters on id and owner in one predicate so a project owned by
// someone else is indistinguishable from a missing one.
func (r *ProjectsRepo) GetByID(ctx context.Context, q db.DBTX, ownerID, id string) (project.Project, error) {
	var p project.Project
	var err error

	err = r.observe("projects.get_by_id", func() error {
		p, err = scanProject(q.QueryRow(ctx,
			`SELECT `+projectColumns+`
			 FROM projects
			 WHERE id = $1 AND owner_id = $2`,
			id, ownerID,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Update(ctx context.Context, q db.DBTX, ownerID, id string, patch project.UpdateProjectRequest) (project.Project, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, ownerID}

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

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND owner_id = $2 RETURNING ` + projectColumns

	var p project.Project
	var err error

	err = r.observe("projects.update", func() error {
		p, err = scanProject(q.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) Delete(ctx context.Context, q db.DBTX, ownerID, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("projects.delete", func() error {
		var e error
		tag, e = q.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)

		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return project.ErrNotFound
	}

	return nil
}
