package service

import (
	"context"
	"strings"

	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs an access token for a user.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// UserService handles accounts and profiles.
type UserService struct {
	users     repository.UserRepository
	follows   repository.FollowRepository
	images    *ImageService
	tokens    TokenIssuer
	snapshots SnapshotInvalidator
}

// NewUserService returns a new UserService. images and snapshots may be nil.
func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	images *ImageService,
	tokens TokenIssuer,
	snapshots SnapshotInvalidator,
) *UserService {
	return &UserService{
		users:     users,
		follows:   follows,
		images:    images,
		tokens:    tokens,
		snapshots: snapshots,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, password, bio string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if len(username) > 50 {
		return nil, models.NewValidationError("Username must be at most 50 characters")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: username, Password: string(hash), Bio: bio}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and returns a signed token for the user.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, models.NewUnauthorizedError("Invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	return token, user, nil
}

// GetProfile returns the user with the usernames they follow and are followed by.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserProfile{
		User:       *user,
		Following:  usernames(following),
		FollowedBy: usernames(followers),
	}, nil
}

// ListUsers pages through accounts by id.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// DeleteAccount removes the user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	images, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if s.images != nil {
		s.images.Release(ctx, images)
	}
	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx)
	}
	return nil
}

func usernames(users []models.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return names
}
