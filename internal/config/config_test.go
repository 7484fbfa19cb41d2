package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateProductionStrictness(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		secret      string
		dbPassword  string
		s3Key       string
		expectError bool
	}{
		{"Production with default secret", "production", defaultJWTSecret, "strong", "key", true},
		{"Production with short secret", "production", "short", "strong", "key", true},
		{"Production with weak DB password", "production", "secure-secret-at-least-32-chars-long", "password", "key", true},
		{"Production without S3 credentials", "prod", "secure-secret-at-least-32-chars-long", "strong", "", true},
		{"Production fully configured", "production", "secure-secret-at-least-32-chars-long", "strong", "key", false},
		{"Development with defaults", "development", defaultJWTSecret, "password", "", false},
		{"Test with short secret", "test", "short", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:         tt.env,
				JWTSecret:   tt.secret,
				DBPassword:  tt.dbPassword,
				DBSSLMode:   "require",
				Port:        "8080",
				S3AccessKey: tt.s3Key,
				S3SecretKey: tt.s3Key,
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRequiredFields(t *testing.T) {
	assert.Error(t, (&Config{JWTSecret: "x"}).Validate())
	assert.Error(t, (&Config{Port: "8080"}).Validate())
	assert.Error(t, (&Config{Port: "8080", JWTSecret: "x", ImageMaxUploadMB: -1}).Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("S3_BUCKET", "bucket-from-env")
	t.Setenv("DISCOVER_CACHE_SECONDS", "5")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "bucket-from-env", c.S3Bucket)
	assert.Equal(t, 5*time.Second, c.DiscoverCacheTTL())
	assert.Equal(t, "recipehub", c.DBName)
}

func TestConfig_ImagePublicBaseURL(t *testing.T) {
	c := &Config{S3Endpoint: "minio:9000", S3Bucket: "images"}
	assert.Equal(t, "http://minio:9000/images", c.ImagePublicBaseURL())

	c.S3UseSSL = true
	assert.Equal(t, "https://minio:9000/images", c.ImagePublicBaseURL())

	c.S3PublicURL = "https://cdn.example.com/img/"
	assert.Equal(t, "https://cdn.example.com/img", c.ImagePublicBaseURL())
}

func TestConfig_S3TimeoutDefault(t *testing.T) {
	assert.Equal(t, 10*time.Second, (&Config{}).S3Timeout())
	assert.Equal(t, 3*time.Second, (&Config{S3TimeoutSeconds: 3}).S3Timeout())
}
