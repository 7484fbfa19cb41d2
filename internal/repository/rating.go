package repository

import (
	"context"
	"errors"
	"time"

	"recipehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository stores per-user sub-scores and keeps post aggregates in step with them.
type RatingRepository interface {
	// Upsert sets one sub-score and recomputes that kind's aggregate in the same transaction.
	Upsert(ctx context.Context, userID, postID uint, kind models.RatingKind, score float64) (*models.Rating, models.Aggregate, error)
	// Clear nulls one sub-score and recomputes. The row goes away once all three are null.
	Clear(ctx context.Context, userID, postID uint, kind models.RatingKind) (models.Aggregate, error)
	Aggregate(ctx context.Context, postID uint, kind models.RatingKind) (models.Aggregate, error)
	Get(ctx context.Context, userID, postID uint) (*models.Rating, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Rating, error)
	CountsByPost(ctx context.Context, kind models.RatingKind, postIDs []uint) (map[uint]int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository returns a new RatingRepository implementation.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, userID, postID uint, kind models.RatingKind, score float64) (*models.Rating, models.Aggregate, error) {
	ctx, end := traceQuery(ctx, "Upsert", "ratings")
	defer end()

	var (
		rating models.Rating
		agg    models.Aggregate
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			return translate(err, "User", userID)
		}
		if _, err := lockPost(tx, postID); err != nil {
			return err
		}

		now := time.Now()
		row := models.Rating{UserID: userID, PostID: postID, CreatedAt: now, UpdatedAt: now}
		row.SetScore(kind, &score)

		// Only the submitted kind is written on conflict; the other sub-scores keep their values.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{kind.Column(), "updated_at"}),
		}).Create(&row).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&rating).Error; err != nil {
			return models.NewInternalError(err)
		}

		var err error
		agg, err = recompute(tx, postID, kind)
		return err
	})
	if err != nil {
		return nil, models.Aggregate{}, err
	}
	return &rating, agg, nil
}

func (r *ratingRepository) Clear(ctx context.Context, userID, postID uint, kind models.RatingKind) (models.Aggregate, error) {
	ctx, end := traceQuery(ctx, "Clear", "ratings")
	defer end()

	var agg models.Aggregate

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPost(tx, postID); err != nil {
			return err
		}

		var rating models.Rating
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Rating", postID)
			}
			return models.NewInternalError(err)
		}

		rating.SetScore(kind, nil)
		q := tx.Model(&models.Rating{}).Where("user_id = ? AND post_id = ?", userID, postID)
		var err error
		if rating.Empty() {
			err = q.Delete(&models.Rating{}).Error
		} else {
			err = q.Updates(map[string]interface{}{kind.Column(): nil, "updated_at": time.Now()}).Error
		}
		if err != nil {
			return models.NewInternalError(err)
		}

		agg, err = recompute(tx, postID, kind)
		return err
	})
	return agg, err
}

func (r *ratingRepository) Aggregate(ctx context.Context, postID uint, kind models.RatingKind) (models.Aggregate, error) {
	return aggregate(r.db.WithContext(ctx), postID, kind)
}

func (r *ratingRepository) Get(ctx context.Context, userID, postID uint) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).First(&rating).Error; err != nil {
		return nil, translate(err, "Rating", postID)
	}
	return &rating, nil
}

func (r *ratingRepository) ListByPost(ctx context.Context, postID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("user_id ASC").Find(&ratings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ratings, nil
}

func (r *ratingRepository) CountsByPost(ctx context.Context, kind models.RatingKind, postIDs []uint) (map[uint]int64, error) {
	ctx, end := traceQuery(ctx, "CountsByPost", "ratings")
	defer end()

	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		N      int64
	}
	col := kind.Column()
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("post_id, COUNT("+col+") AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.PostID] = row.N
	}
	return counts, nil
}
