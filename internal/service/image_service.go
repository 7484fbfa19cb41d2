package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math/big"
	"strings"

	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/internal/storage"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	saltLength                  = 16
	saltAlphabet                = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// allowedImageExtensions maps a data-URL subtype to the decoder format it must contain.
var allowedImageExtensions = map[string]string{
	"png":  "png",
	"gif":  "gif",
	"jpg":  "jpeg",
	"jpeg": "jpeg",
	"webp": "webp",
}

// ImageService stores uploaded pictures in object storage and tracks them in the database.
type ImageService struct {
	repo               repository.ImageRepository
	posts              repository.PostRepository
	users              repository.UserRepository
	store              storage.ObjectStore
	baseURL            string
	maxUploadSizeBytes int
}

// NewImageService returns a new ImageService. baseURL prefixes stored object names
// to form public URLs.
func NewImageService(
	repo repository.ImageRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	store storage.ObjectStore,
	baseURL string,
	maxUploadSizeMB int,
) *ImageService {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultImageMaxUploadSizeMB
	}
	return &ImageService{
		repo:               repo,
		posts:              posts,
		users:              users,
		store:              store,
		baseURL:            strings.TrimRight(baseURL, "/"),
		maxUploadSizeBytes: maxUploadSizeMB * 1024 * 1024,
	}
}

// DecodedImage is a validated data URL payload.
type DecodedImage struct {
	Extension   string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// DecodeDataURL parses "data:image/<ext>;base64,<payload>" and checks that the
// payload really is an image of that type.
func DecodeDataURL(dataURL string, maxBytes int) (*DecodedImage, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(dataURL), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, models.NewValidationError("Image must be a base64 data URL")
	}

	mimeType := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	ext, ok := strings.CutPrefix(mimeType, "image/")
	if !ok {
		return nil, models.NewValidationError("Data URL is not an image")
	}
	format, ok := allowedImageExtensions[ext]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("Unsupported image type %q", ext))
	}

	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, models.NewValidationError(fmt.Sprintf("Image too large (max %dMB)", maxBytes/(1024*1024)))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, models.NewValidationError("Image data is not valid base64")
		}
	}
	if len(data) == 0 {
		return nil, models.NewValidationError("Image data is empty")
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("Image too large (max %dMB)", maxBytes/(1024*1024)))
	}

	cfg, decodedFormat, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if decodedFormat != format {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	return &DecodedImage{
		Extension:   ext,
		ContentType: mimeType,
		Data:        data,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// newSalt returns a random object name stem of uppercase letters and digits.
func newSalt() (string, error) {
	alphabetLen := big.NewInt(int64(len(saltAlphabet)))
	b := make([]byte, saltLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b[i] = saltAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Upload stores an image for a user's profile or one of their posts.
// Nothing is recorded when the object store rejects the bytes.
func (s *ImageService) Upload(ctx context.Context, uploaderID uint, ownerType models.ImageOwnerType, ownerID uint, dataURL string) (*models.Image, error) {
	if err := s.authorizeOwner(ctx, uploaderID, ownerType, ownerID); err != nil {
		return nil, err
	}

	decoded, err := DecodeDataURL(dataURL, s.maxUploadSizeBytes)
	if err != nil {
		return nil, err
	}

	salt, err := newSalt()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	record := &models.Image{
		OwnerType:  ownerType,
		OwnerID:    ownerID,
		UploaderID: uploaderID,
		BaseURL:    s.baseURL,
		Salt:       salt,
		Extension:  decoded.Extension,
		Width:      decoded.Width,
		Height:     decoded.Height,
	}

	if err := s.store.Put(ctx, record.StoredName(), decoded.Data, decoded.ContentType); err != nil {
		if models.HasCode(err, models.CodeStorage) {
			return nil, err
		}
		return nil, models.NewStorageError("Image storage request failed", err)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.release(ctx, []models.Image{*record})
		return nil, err
	}
	return record, nil
}

func (s *ImageService) authorizeOwner(ctx context.Context, uploaderID uint, ownerType models.ImageOwnerType, ownerID uint) error {
	switch ownerType {
	case models.ImageOwnerUser:
		if _, err := s.users.GetByID(ctx, ownerID); err != nil {
			return err
		}
		if ownerID != uploaderID {
			return models.NewForbiddenError("You can only upload your own profile image")
		}
	case models.ImageOwnerPost:
		post, err := s.posts.GetByID(ctx, ownerID)
		if err != nil {
			return err
		}
		if post.UserID != uploaderID {
			return models.NewForbiddenError("You can only add images to your own posts")
		}
	default:
		return models.NewValidationError(fmt.Sprintf("Invalid image owner type %q", ownerType))
	}
	return nil
}

// Get returns one image record.
func (s *ImageService) Get(ctx context.Context, id uint) (*models.Image, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes an image the caller uploaded, then releases its bytes.
func (s *ImageService) Delete(ctx context.Context, userID, imageID uint) error {
	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.UploaderID != userID {
		return models.NewForbiddenError("You can only delete your own images")
	}
	if err := s.repo.Delete(ctx, imageID); err != nil {
		return err
	}
	s.release(ctx, []models.Image{*img})
	return nil
}

// ForOwners groups the images of the given owners by owner id.
func (s *ImageService) ForOwners(ctx context.Context, ownerType models.ImageOwnerType, ownerIDs []uint) (map[uint][]models.Image, error) {
	images, err := s.repo.ListByOwners(ctx, ownerType, ownerIDs)
	if err != nil {
		return nil, err
	}
	byOwner := make(map[uint][]models.Image, len(ownerIDs))
	for _, img := range images {
		byOwner[img.OwnerID] = append(byOwner[img.OwnerID], img)
	}
	return byOwner, nil
}

// Release deletes stored bytes for images whose rows are already gone.
func (s *ImageService) Release(ctx context.Context, images []models.Image) {
	s.release(ctx, images)
}

// release is best-effort: a storage failure never undoes the committed delete.
func (s *ImageService) release(ctx context.Context, images []models.Image) {
	for i := range images {
		name := images[i].StoredName()
		err := s.store.Remove(ctx, name)
		if err == nil || models.IsNotFound(err) || errors.Is(err, storage.ErrObjectNotFound) {
			continue
		}
		middleware.Logger.WarnContext(ctx, "failed to release stored image",
			"object", name,
			"error", err,
		)
	}
}
