package db

import (
	"context"
	"errors"
	"time"

	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/domain/project"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/codelens/taskhub/internal/domain/user"
	"github.com/codelens/taskhub/internal/security"
	"github.com/jackc/pgx/v5"
)

const seedUserEmail = "test@example.com"

// SeedDemoData loads a small demo dataset: two users, two projects and three
// tasks owned by the test user. The test user's presence is the idempotency
// marker, a database that already has it is left untouched.
func SeedDemoData(ctx context.Context, q DBTX, cfg config.Config) error {
	var dummy string

	err := q.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, seedUserEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	testUser, err := seedUser(ctx, q, cfg, seedUserEmail, "testuser", "Test@123", user.DefaultRole)

	if err != nil {
		return err
	}

	_, err = seedUser(ctx, q, cfg, "admin@example.com", "admin", "Admin@123", user.AdminRole)

	if err != nil {
		return err
	}

	website, err := seedProject(ctx, q, testUser.ID, project.CreateProjectRequest{
		Title:       "Website Redesign",
		Description: "Redesign company website with modern UI",
		Status:      project.StatusActive,
	})

	if err != nil {
		return err
	}

	mobile, err := seedProject(ctx, q, testUser.ID, project.CreateProjectRequest{
		Title:       "Mobile App Development",
		Description: "Build cross-platform mobile application",
		Status:      project.StatusPlanning,
	})

	if err != nil {
		return err
	}

	now := time.Now()

	tasks := []struct {
		projectID string
		req       task.CreateTaskRequest
		due       time.Time
	}{
		{
			projectID: website.ID,
			req: task.CreateTaskRequest{
				Title:       "Design homepage",
				Description: "Create wireframes for homepage",
				Status:      task.StatusDone,
			},
			due: now.AddDate(0, 0, 7),
		},
		{
			projectID: website.ID,
			req: task.CreateTaskRequest{
				Title:       "Implement contact form",
				Description: "Develop contact form functionality",
				Status:      task.StatusInProgress,
			},
			due: now.AddDate(0, 0, 14),
		},
		{
			projectID: mobile.ID,
			req: task.CreateTaskRequest{
				Title:       "Create app wireframes",
				Description: "Design initial app screens",
				Status:      task.StatusTodo,
			},
			due: now.AddDate(0, 0, 3),
		},
	}

	for _, entry := range tasks {
		t := task.NewFromCreateRequest(testUser.ID, entry.projectID, entry.req, entry.due)

		_, err = q.Exec(ctx,
			`INSERT INTO tasks (id, project_id, owner_id, title, description, status, due_date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.ProjectID, t.OwnerID, t.Title, t.Description, t.Status, t.DueDate, t.CreatedAt, t.UpdatedAt)

		if err != nil {
			return err
		}
	}

	return nil
}

func seedUser(ctx context.Context, q DBTX, cfg config.Config, email, username, password, role string) (user.User, error) {
	hash, err := security.HashPassword(password, cfg.BcryptCost)

	if err != nil {
		return user.User{}, err
	}

	u := user.NewFromRegisterRequest(user.RegisterRequest{
		Email:    email,
		Username: username,
	}, hash)
	u.Role = role

	_, err = q.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func seedProject(ctx context.Context, q DBTX, ownerID string, req project.CreateProjectRequest) (project.Project, error) {
	p := project.NewFromCreateRequest(ownerID, req)

	_, err := q.Exec(ctx,
		`INSERT INTO projects (id, owner_id, title, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OwnerID, p.Title, p.Description, p.Status, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}
