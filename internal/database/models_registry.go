package database

import "recipehub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Rating{},
		&models.Follow{},
		&models.Comment{},
		&models.Image{},
	}
}
