// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"sort"
	"sync"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/repository"
)

// TinyWebPDataURL is a 1x1 lossless WebP.
const TinyWebPDataURL = "data:image/webp;base64,UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

var _ repository.ImageRepository = (*ImageRepoStub)(nil)

// ImageRepoStub is an in-memory image repository implementation for tests.
type ImageRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.Image
	nextID uint

	// CreateErr, when set, is returned by Create instead of storing the image.
	CreateErr error
}

// NewImageRepoStub creates an in-memory image repository stub for tests.
func NewImageRepoStub() *ImageRepoStub {
	return &ImageRepoStub{items: make(map[uint]*models.Image), nextID: 1}
}

// Create stores image metadata in-memory.
func (s *ImageRepoStub) Create(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if img.ID == 0 {
		img.ID = s.nextID
		s.nextID++
	}
	img.CreatedAt = time.Now().UTC()
	img.URL = img.PublicURL()
	stored := *img
	s.items[img.ID] = &stored
	return nil
}

// GetByID fetches an image by id.
func (s *ImageRepoStub) GetByID(_ context.Context, id uint) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError("Image", id)
	}
	out := *item
	return &out, nil
}

// ListByOwners returns the images of the given owners ordered by id.
func (s *ImageRepoStub) ListByOwners(_ context.Context, ownerType models.ImageOwnerType, ownerIDs []uint) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uint]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		want[id] = struct{}{}
	}
	var out []models.Image
	for _, item := range s.items {
		if _, ok := want[item.OwnerID]; ok && item.OwnerType == ownerType {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes an image by id.
func (s *ImageRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return models.NewNotFoundError("Image", id)
	}
	delete(s.items, id)
	return nil
}

// Len reports how many images are stored.
func (s *ImageRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGDataURL wraps TinyPNG in a base64 data URL.
func PNGDataURL(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(TinyPNG(t, w, h))
}
