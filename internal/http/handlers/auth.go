package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codelens/taskhub/internal/auth"
	"github.com/codelens/taskhub/internal/config"
	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/user"
	"github.com/codelens/taskhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Exists(ctx context.Context, q db.DBTX, email string) (bool, error)
	Create(ctx context.Context, q db.DBTX, u user.User) error
	GetByEmail(ctx context.Context, q db.DBTX, email string) (user.User, error)
}

type AuthHandler struct {
	users  UserStore
	runner TxRunner
	q      db.DBTX
	jwt    *auth.Manager
	cfg    config.Config
}

func NewAuthHandler(users UserStore, runner TxRunner, q db.DBTX, jwtManager *auth.Manager, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:  users,
		runner: runner,
		q:      q,
		jwt:    jwtManager,
		cfg:    cfg,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSONStrict(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password, h.cfg.BcryptCost)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.NewFromRegisterRequest(req, hash)

	// The existence probe and the insert share one transaction; the unique
	// index backstops the race between two concurrent registrations.
	err = h.runner.RunInTx(cctx, func(tx db.DBTX) error {
		taken, checkErr := h.users.Exists(cctx, tx, req.Email)

		if checkErr != nil {
			return checkErr
		}

		if taken {
			return user.ErrEmailTaken
		}

		return h.users.Create(cctx, tx, u)
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "Email already registered", "email", req.Email)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	RespondData(ctx, http.StatusCreated, gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"username": u.Username,
		"role":     u.Role,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSONStrict(ctx, &req) {
		return
	}

	// short timeout for the DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, h.q, req.Email)

	if err != nil {
		// same answer whether the email exists or not
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	// user.User hides the password hash via its json tag
	RespondData(ctx, http.StatusOK, gin.H{
		"user":  foundUser,
		"token": token,
	})
}
