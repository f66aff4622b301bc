package service

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/homedeck/homedeck/internal/auth"
	"github.com/homedeck/homedeck/internal/database"
)

const (
	MaxNameLength     = 50
	MinPasswordLength = 4
)

const msgInvalidCredentials = "Invalid name or password"

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IsChild   bool   `json:"isChild"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// LoginResponse carries the access token of a successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// AuthService handles signup and login.
type AuthService struct {
	db     database.DB
	issuer *auth.Issuer
}

func NewAuthService(db database.DB, issuer *auth.Issuer) *AuthService {
	return &AuthService{db: db, issuer: issuer}
}

// Signup creates a new user.
func (s *AuthService) Signup(ctx context.Context, name, password string, isChild bool) Response {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return BadRequest("Name must be between 1 and 50 characters")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return BadRequest("Password must be at least 4 characters")
	}

	if _, err := s.db.GetUserByName(ctx, name); err == nil {
		return Conflict("Name already exists")
	} else if !errors.Is(err, database.ErrNotFound) {
		log.Error("signup lookup failed", "error", err)
		return Internal("Failed to register user")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return Internal("Failed to register user")
	}

	user, err := s.db.CreateUser(ctx, name, hash, isChild)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return Conflict("Name already exists")
		}
		return Internal("Failed to register user")
	}

	log.Info("user registered", "user_id", user.ID, "name", user.Name)
	return Success("User registered successfully", UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		IsChild:   user.IsChild,
		CreatedAt: formatTime(user.CreatedAt),
	}, http.StatusCreated)
}

// Login verifies credentials and issues an access token.
// An unknown name and a wrong password produce the same response.
func (s *AuthService) Login(ctx context.Context, name, password string) Response {
	user, err := s.db.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			auth.BurnPasswordCheck(password)
			return Unauthorized(msgInvalidCredentials)
		}
		return Internal("Failed to login")
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		log.Error("failed to verify password", "user_id", user.ID, "error", err)
		return Internal("Failed to login")
	}
	if !ok {
		return Unauthorized(msgInvalidCredentials)
	}

	token, err := s.issuer.Generate(auth.Identity{UserID: user.ID, Name: user.Name})
	if err != nil {
		log.Error("failed to issue token", "user_id", user.ID, "error", err)
		return Internal("Failed to login")
	}

	return Success("Login successful", LoginResponse{
		Token: token,
		User: UserResponse{
			ID:      user.ID,
			Name:    user.Name,
			IsChild: user.IsChild,
		},
	}, http.StatusOK)
}
