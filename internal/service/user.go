package service

import (
	"context"
	"strings"

	"github.com/devialdimp/bank-ledger/internal/auth"
	"github.com/devialdimp/bank-ledger/internal/models"
)

// UserStore is the registration/lookup slice of the store.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash, bio string) (*models.User, error)
	Users(ctx context.Context) ([]models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserService handles registration and login. Credential mechanics live in
// the auth package; this service only wires them to the store.
type UserService struct {
	store  UserStore
	tokens *auth.TokenManager
}

// creates a new UserService
func NewUserService(store UserStore, tokens *auth.TokenManager) *UserService {
	return &UserService{store: store, tokens: tokens}
}

// Register creates a user with a hashed password.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		req.Password == "" {
		return nil, models.ErrMissingField
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.store.CreateUser(ctx, req.Name, req.Email, hash, req.Bio)
}

// Login checks credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.store.UserByEmail(ctx, req.Email)
	if err != nil {
		// same answer for unknown email and wrong password
		return "", models.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

// ListUsers returns all users.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users(ctx)
}

// GetUser returns one user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.store.UserByID(ctx, id)
}
