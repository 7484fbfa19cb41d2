package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ImageOwnerType discriminates what an image belongs to.
type ImageOwnerType string

const (
	ImageOwnerUser ImageOwnerType = "user"
	ImageOwnerPost ImageOwnerType = "post"
)

// ParseImageOwnerType validates an owner discriminator.
func ParseImageOwnerType(raw string) (ImageOwnerType, error) {
	switch ImageOwnerType(raw) {
	case ImageOwnerUser, ImageOwnerPost:
		return ImageOwnerType(raw), nil
	}
	return "", NewValidationError(fmt.Sprintf("Invalid image owner type %q", raw))
}

// Image is an uploaded picture owned by exactly one user (profile photo) or
// one post (recipe photo).
type Image struct {
	ID        uint           `gorm:"primaryKey" json:"image_id"`
	OwnerType ImageOwnerType `gorm:"type:varchar(16);not null;index:idx_images_owner" json:"owner_type"`
	OwnerID   uint           `gorm:"not null;index:idx_images_owner" json:"owner_id"`
	// UploaderID is the user who uploaded the image; only they may delete it.
	UploaderID uint      `gorm:"not null" json:"uploader_id"`
	BaseURL    string    `gorm:"not null" json:"-"`
	Salt       string    `gorm:"type:varchar(32);not null" json:"-"`
	Extension  string    `gorm:"type:varchar(8);not null" json:"-"`
	Width      int       `gorm:"not null" json:"width"`
	Height     int       `gorm:"not null" json:"height"`
	URL        string    `gorm:"-" json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

// StoredName is the object key in the storage bucket.
func (i *Image) StoredName() string {
	return i.Salt + "." + i.Extension
}

// PublicURL is where clients fetch the image.
func (i *Image) PublicURL() string {
	return fmt.Sprintf("%s/%s", i.BaseURL, i.StoredName())
}

// AfterFind fills the computed URL.
func (i *Image) AfterFind(_ *gorm.DB) error {
	i.URL = i.PublicURL()
	return nil
}

// AfterCreate fills the computed URL.
func (i *Image) AfterCreate(_ *gorm.DB) error {
	i.URL = i.PublicURL()
	return nil
}
