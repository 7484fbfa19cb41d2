package repository

import (
	"context"
	"errors"

	"recipehub/internal/cache"
	"recipehub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	// Delete removes the account and everything hanging off it, returning the removed images.
	Delete(ctx context.Context, id uint) ([]models.Image, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewUserRepository returns a new UserRepository implementation.
// c may be nil, in which case lookups always hit the database.
func NewUserRepository(db *gorm.DB, c *cache.Cache) UserRepository {
	return &userRepository{db: db, cache: c}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	_, err := r.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return translate(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns nil, nil when no user has that name.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Posts").Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) ([]models.Image, error) {
	var images []models.Image

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, id).Error; err != nil {
			return translate(err, "User", id)
		}

		var ownPosts []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &ownPosts).Error; err != nil {
			return models.NewInternalError(err)
		}

		// Posts the user rated but does not own need their aggregates refreshed.
		rated := tx.Model(&models.Rating{}).Where("user_id = ?", id)
		if len(ownPosts) > 0 {
			rated = rated.Where("post_id NOT IN ?", ownPosts)
		}
		var ratedPosts []uint
		if err := rated.Distinct().Pluck("post_id", &ratedPosts).Error; err != nil {
			return models.NewInternalError(err)
		}

		postImages, err := cascadePosts(tx, ownPosts)
		if err != nil {
			return err
		}
		images = append(images, postImages...)

		var profileImages []models.Image
		if err := tx.Where("owner_type = ? AND owner_id = ?", models.ImageOwnerUser, id).Find(&profileImages).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("owner_type = ? AND owner_id = ?", models.ImageOwnerUser, id).Delete(&models.Image{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		images = append(images, profileImages...)

		if err := tx.Where("user_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, postID := range ratedPosts {
			if _, err := lockPost(tx, postID); err != nil {
				return err
			}
			for _, kind := range models.RatingKinds {
				if _, err := recompute(tx, postID, kind); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.cache.Invalidate(ctx, cache.UserKey(id))
	return images, nil
}
