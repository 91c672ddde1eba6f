package postgres

import (
	"context"
	"errors"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/user"
	"github.com/codelens/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type UsersRepo struct {
	prom *observability.Prom
}

func NewUsersRepo(prom *observability.Prom) *UsersRepo {
	return &UsersRepo{prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Exists(ctx context.Context, q db.DBTX, email string) (bool, error) {
	var exists bool

	err := r.observe("users.exists", func() error {
		return q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) Create(ctx context.Context, q db.DBTX, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := q.Exec(ctx,
			`INSERT INTO users (id, email, username, password_hash, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, u.Email, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_uniq" {
			return user.ErrEmailTaken
		}
		return err
	}

	return nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, q db.DBTX, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return q.QueryRow(ctx,
			`SELECT id, email, username, password_hash, role, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Username,
			&u.PasswordHash,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}
