package repository

import (
	"context"

	"recipehub/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Post, error)
	ListByUserIDs(ctx context.Context, userIDs []uint) ([]models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	// Delete removes the post with its ratings, comments and images and returns the removed images.
	Delete(ctx context.Context, id uint) ([]models.Image, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Comments").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return r.ListByUserIDs(ctx, []uint{userID})
}

func (r *postRepository) ListByUserIDs(ctx context.Context, userIDs []uint) ([]models.Post, error) {
	ctx, end := traceQuery(ctx, "ListByUserIDs", "posts")
	defer end()

	posts := []models.Post{}
	if len(userIDs) == 0 {
		return posts, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC, id ASC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	ctx, end := traceQuery(ctx, "ListAll", "posts")
	defer end()

	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) ([]models.Image, error) {
	var images []models.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPost(tx, id); err != nil {
			return err
		}
		var err error
		images, err = cascadePosts(tx, []uint{id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}
