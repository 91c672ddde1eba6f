package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	DefaultRole = "USER"
	AdminRole   = "ADMIN"
)

var ErrEmailTaken = errors.New("email already registered")
var ErrNotFound = errors.New("user not found")

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Username        string `json:"username" binding:"omitempty,min=3,max=20"`
	Password        string `json:"password" binding:"required,min=8,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// NewFromRegisterRequest builds a User from a validated registration payload.
// The password hash is supplied by the caller, hashing is not a domain concern.
func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
