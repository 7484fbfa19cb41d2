package service

import (
	"context"
	"errors"
	"strings"

	"recipehub/internal/events"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// PostService provides recipe post business logic.
type PostService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	images    *ImageService
	publisher events.Publisher
	snapshots SnapshotInvalidator
}

// NewPostService returns a new PostService. images, publisher and snapshots may be nil.
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	images *ImageService,
	publisher events.Publisher,
	snapshots SnapshotInvalidator,
) *PostService {
	return &PostService{
		posts:     posts,
		users:     users,
		images:    images,
		publisher: publisher,
		snapshots: snapshots,
	}
}

// CreatePostInput holds the fields of a new post.
type CreatePostInput struct {
	Title       string
	Ingredients string
	Recipe      string
	RecipeTime  int
	Tags        []string
	// ImageData is an optional base64 data URL stored as the post's first image.
	ImageData string
}

// CreatePostResult is the created post plus the outcome of its optional image.
// ImageError is set when the post was saved but its image could not be.
type CreatePostResult struct {
	Post       *models.Post  `json:"post"`
	Image      *models.Image `json:"image,omitempty"`
	ImageError string        `json:"image_error,omitempty"`
}

// CreatePost saves a post for userID. An image failure does not undo the post.
func (s *PostService) CreatePost(ctx context.Context, userID uint, in CreatePostInput) (*CreatePostResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Ingredients) == "" {
		return nil, models.NewValidationError("Ingredients are required")
	}
	if in.RecipeTime < 0 {
		return nil, models.NewValidationError("Recipe time must not be negative")
	}
	tags, err := models.NewTagSet(in.Tags)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:      userID,
		Title:       title,
		Ingredients: in.Ingredients,
		Recipe:      in.Recipe,
		RecipeTime:  in.RecipeTime,
		Tags:        tags,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	result := &CreatePostResult{Post: post}
	if in.ImageData != "" && s.images != nil {
		img, err := s.images.Upload(ctx, userID, models.ImageOwnerPost, post.ID, in.ImageData)
		if err != nil {
			result.ImageError = errorMessage(err)
		} else {
			result.Image = img
			post.Images = []models.Image{*img}
		}
	}

	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx)
	}
	events.Emit(ctx, s.publisher, events.SubjectPostCreated, events.PostCreated{
		PostID: post.ID,
		UserID: userID,
		Title:  post.Title,
		Tags:   post.Tags,
	})
	return result, nil
}

// GetPost returns a post with its images.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	posts := []models.Post{*post}
	if err := s.AttachImages(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts returns the newest posts first.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return posts, s.AttachImages(ctx, posts)
}

// ListByUser returns an existing user's posts, oldest first.
func (s *PostService) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return posts, s.AttachImages(ctx, posts)
}

// DeletePost removes a post the caller owns together with its ratings, comments and images.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	images, err := s.posts.Delete(ctx, postID)
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

// AttachImages fills Images on each post in place.
func (s *PostService) AttachImages(ctx context.Context, posts []models.Post) error {
	if s.images == nil || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	byOwner, err := s.images.ForOwners(ctx, models.ImageOwnerPost, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		posts[i].Images = byOwner[posts[i].ID]
	}
	return nil
}

func errorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
