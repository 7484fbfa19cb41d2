package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/storage"
	"recipehub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	putErr    error
	removeErr error
	removed   []string
}

func (f *failingStore) Put(context.Context, string, []byte, string) error { return f.putErr }
func (f *failingStore) Remove(_ context.Context, name string) error {
	f.removed = append(f.removed, name)
	return f.removeErr
}

func TestDecodeDataURL(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		img, err := DecodeDataURL(testutil.PNGDataURL(t, 3, 2), 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "png", img.Extension)
		assert.Equal(t, "image/png", img.ContentType)
		assert.Equal(t, 3, img.Width)
		assert.Equal(t, 2, img.Height)
	})

	t.Run("webp", func(t *testing.T) {
		img, err := DecodeDataURL(testutil.TinyWebPDataURL, 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "webp", img.Extension)
		assert.Equal(t, 1, img.Width)
	})

	bad := []struct {
		name string
		url  string
	}{
		{"not a data url", "http://example.com/a.png"},
		{"not an image", "data:text/plain;base64,aGVsbG8="},
		{"unsupported subtype", "data:image/bmp;base64,Qk0="},
		{"bad base64", "data:image/png;base64,!!!"},
		{"content mismatch", strings.Replace(testutil.PNGDataURL(t, 1, 1), "image/png", "image/jpeg", 1)},
		{"not decodable", "data:image/png;base64,aGVsbG8="},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURL(tt.url, 1<<20)
			assertAppCode(t, err, models.CodeValidation)
		})
	}

	t.Run("too large", func(t *testing.T) {
		_, err := DecodeDataURL(testutil.PNGDataURL(t, 64, 64), 10)
		assertAppCode(t, err, models.CodeValidation)
	})
}

func TestNewSalt(t *testing.T) {
	a, err := newSalt()
	require.NoError(t, err)
	b, err := newSalt()
	require.NoError(t, err)

	assert.Len(t, a, saltLength)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.True(t, strings.ContainsRune(saltAlphabet, r), "unexpected rune %q", r)
	}
}

func TestImageServiceUploadAndDelete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	owner := s.mustUser(t, "owner")
	other := s.mustUser(t, "other")
	post := s.mustPost(t, owner.ID, time.Now())

	img, err := s.images.Upload(ctx, owner.ID, models.ImageOwnerPost, post.ID, testutil.PNGDataURL(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "http://img.test/bucket/"+img.StoredName(), img.URL)
	_, ok := s.store.Get(img.StoredName())
	assert.True(t, ok)

	_, err = s.images.Upload(ctx, other.ID, models.ImageOwnerPost, post.ID, testutil.PNGDataURL(t, 4, 4))
	assertAppCode(t, err, models.CodeForbidden)
	_, err = s.images.Upload(ctx, other.ID, models.ImageOwnerUser, owner.ID, testutil.PNGDataURL(t, 4, 4))
	assertAppCode(t, err, models.CodeForbidden)

	assertAppCode(t, s.images.Delete(ctx, other.ID, img.ID), models.CodeForbidden)
	require.NoError(t, s.images.Delete(ctx, owner.ID, img.ID))
	assert.Equal(t, 0, s.store.Len())
	_, err = s.images.Get(ctx, img.ID)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestImageServiceStorageFailureWritesNothing(t *testing.T) {
	repo := testutil.NewImageRepoStub()
	store := &failingStore{putErr: errors.New("connection refused")}
	svc := NewImageService(repo, noopPostRepo(), noopUserRepo(), store, "http://img.test", 1)

	_, err := svc.Upload(context.Background(), 7, models.ImageOwnerUser, 7, testutil.PNGDataURL(t, 2, 2))
	assertAppCode(t, err, models.CodeStorage)
	assert.Equal(t, 0, repo.Len())
}

func TestImageServiceReleasesBytesWhenRowFails(t *testing.T) {
	repo := testutil.NewImageRepoStub()
	repo.CreateErr = models.NewInternalError(errors.New("disk full"))
	store := storage.NewMemoryStore()
	svc := NewImageService(repo, noopPostRepo(), noopUserRepo(), store, "http://img.test", 1)

	_, err := svc.Upload(context.Background(), 7, models.ImageOwnerUser, 7, testutil.PNGDataURL(t, 2, 2))
	assertAppCode(t, err, models.CodeInternal)
	assert.Equal(t, 0, store.Len())
}

func TestImageServiceReleaseIsBestEffort(t *testing.T) {
	store := &failingStore{removeErr: models.NewStorageError("down", errors.New("timeout"))}
	svc := NewImageService(testutil.NewImageRepoStub(), noopPostRepo(), noopUserRepo(), store, "http://img.test", 1)

	svc.Release(context.Background(), []models.Image{
		{Salt: "AAAA", Extension: "png"},
		{Salt: "BBBB", Extension: "gif"},
	})
	assert.Equal(t, []string{"AAAA.png", "BBBB.gif"}, store.removed)
}
