package database

import (
	"context"
	"testing"
	"time"

	"recipehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestOpenSQLite_MigratesSchema(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestPersistentModels_IncludesRatingAndFollow(t *testing.T) {
	var hasRating, hasFollow bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.Rating:
			hasRating = true
		case *models.Follow:
			hasFollow = true
		}
	}
	assert.True(t, hasRating)
	assert.True(t, hasFollow)
}

func TestCustomGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(nil)
	silent := l.LogMode(logger.Silent).(*CustomGormLogger)
	assert.Equal(t, logger.Silent, silent.Config.LogLevel)
	assert.Equal(t, logger.Warn, l.Config.LogLevel)

	// Silent never touches the underlying slog logger.
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
}
