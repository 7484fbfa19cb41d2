package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipehub/internal/config"
	"recipehub/internal/database"
	"recipehub/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, []byte, string) error {
	return errors.New("connection refused")
}
func (brokenStore) Remove(context.Context, string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		Port:             "0",
		JWTSecret:        "test-secret",
		S3Endpoint:       "minio:9000",
		S3Bucket:         "images",
		ImageMaxUploadMB: 1,
	}
}

func newTestServer(t *testing.T, store storage.ObjectStore) (*Server, *fiber.App) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := NewServer(testConfig(), Deps{DB: db, Store: store})
	require.NoError(t, err)
	return s, s.App()
}

// call sends a JSON request and decodes the response body into out when out is non-nil.
func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out), "body: %s", data)
	}
	return resp.StatusCode
}

type session struct {
	ID    uint
	Token string
}

func signup(t *testing.T, app *fiber.App, username string) session {
	t.Helper()
	creds := map[string]string{"username": username, "password": "password1"}
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/auth/register", "", creds, nil))

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"user_id"`
		} `json:"user"`
	}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/auth/login", "", creds, &login))
	require.NotEmpty(t, login.Token)
	return session{ID: login.User.ID, Token: login.Token}
}

type postBody struct {
	ID            uint     `json:"post_id"`
	UserID        uint     `json:"user_id"`
	Tags          []string `json:"tags"`
	OverallRating float64  `json:"overall_rating"`
	Images        []struct {
		ID  uint   `json:"image_id"`
		URL string `json:"url"`
	} `json:"images"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
