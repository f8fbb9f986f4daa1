package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("UPLOAD_BACKEND", "")
	t.Setenv("UPLOAD_DIRECTORY", "")
	t.Setenv("SALT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, UploadBackendDisk, cfg.Upload.Backend)
	assert.Equal(t, "upload", cfg.Get("UPLOAD_DIRECTORY"))
	assert.Equal(t, "dev-salt", cfg.Get("SALT"))
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, cfg.Upload.AllowedExtensions)
	assert.Empty(t, cfg.Get("UNKNOWN_KEY"))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SALT", "pepper")
	t.Setenv("UPLOAD_DIRECTORY", "/var/avatars")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", " .PNG, .webp ,")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("REDIS_EXISTS_TTL_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "pepper", cfg.Get("SALT"))
	assert.Equal(t, "/var/avatars", cfg.Get("UPLOAD_DIRECTORY"))
	assert.Equal(t, []string{".png", ".webp"}, cfg.Upload.AllowedExtensions)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.Redis.ExistsTTL())
}

func TestLoad_ExtensionsWithoutDot(t *testing.T) {
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "png, JPG,.webp")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{".png", ".jpg", ".webp"}, cfg.Upload.AllowedExtensions)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"redis db":    {"REDIS_DB": "abc"},
		"bcrypt cost": {"AUTH_BCRYPT_COST": "2"},
		"backend":     {"UPLOAD_BACKEND": "ftp"},
		"s3 bucket":   {"UPLOAD_BACKEND": "s3", "UPLOAD_S3_BUCKET": ""},
		"max size":    {"UPLOAD_MAX_SIZE_BYTES": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
