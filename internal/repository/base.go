// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"recipehub/internal/models"
	"recipehub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// translate maps gorm errors to application errors for the named resource.
func translate(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// lockPost loads the post row and holds it for update until tx ends.
// SQLite drops the locking clause; single-writer semantics cover it there.
func lockPost(tx *gorm.DB, postID uint) (*models.Post, error) {
	var post models.Post
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
		return nil, translate(err, "Post", postID)
	}
	return &post, nil
}

// aggregate sums and counts the non-null sub-scores of kind on postID.
func aggregate(tx *gorm.DB, postID uint, kind models.RatingKind) (models.Aggregate, error) {
	var row struct {
		Total float64
		N     int64
	}
	col := kind.Column()
	err := tx.Model(&models.Rating{}).
		Select("COALESCE(SUM("+col+"), 0) AS total, COUNT("+col+") AS n").
		Where("post_id = ?", postID).
		Scan(&row).Error
	if err != nil {
		return models.Aggregate{}, models.NewInternalError(err)
	}
	return models.Aggregate{Sum: row.Total, Count: row.N}, nil
}

// recompute refreshes the post's aggregate for kind from the ratings table.
// With no ratings of that kind left, the stored value is kept.
func recompute(tx *gorm.DB, postID uint, kind models.RatingKind) (models.Aggregate, error) {
	agg, err := aggregate(tx, postID, kind)
	if err != nil {
		return agg, err
	}
	mean, ok := agg.Mean()
	if !ok {
		return agg, nil
	}
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn(kind.PostColumn(), mean).Error; err != nil {
		return agg, models.NewInternalError(err)
	}
	return agg, nil
}

// cascadePosts deletes posts with their ratings, comments and images, children first.
// It returns the deleted image rows so their stored bytes can be released after commit.
func cascadePosts(tx *gorm.DB, postIDs []uint) ([]models.Image, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	var images []models.Image
	if err := tx.Where("owner_type = ? AND owner_id IN ?", models.ImageOwnerPost, postIDs).Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := tx.Where("owner_type = ? AND owner_id IN ?", models.ImageOwnerPost, postIDs).Delete(&models.Image{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Rating{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

// traceQuery opens a repository span and starts the query latency timer.
// The returned func ends both.
func traceQuery(ctx context.Context, method, table string) (context.Context, func()) {
	ctx, span := observability.TraceRepositoryMethod(ctx, method, table)
	done := observability.TrackQuery(method, table)
	return ctx, func() {
		done()
		span.End()
	}
}
