package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/logger"
)

const kvResponse = `{
  "data": {
    "data": {"password": "s3cret", "port": 5432},
    "metadata": {
      "created_time": "2024-01-01T00:00:00Z",
      "custom_metadata": null,
      "deletion_time": "",
      "destroyed": false,
      "version": 3
    }
  }
}`

func fakeVault(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		if r.URL.Path != "/v1/secret/data/gridrisk/database" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(kvResponse))
	}))
}

func testConfig(addr string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Password: "from-file"},
		Vault: config.VaultConfig{
			Enabled:     true,
			Address:     addr,
			Token:       "test-token",
			MountPath:   "secret",
			SecretPath:  "gridrisk/database",
			PasswordKey: "password",
		},
	}
}

func TestApplyDatabasePassword(t *testing.T) {
	srv := fakeVault(t)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	require.NoError(t, ApplyDatabasePassword(context.Background(), cfg, logger.NewNoopLogger()))
	assert.Equal(t, "s3cret", cfg.Database.Password)
}

func TestApplyDatabasePassword_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Vault.Enabled = false

	require.NoError(t, ApplyDatabasePassword(context.Background(), cfg, logger.NewNoopLogger()))
	assert.Equal(t, "from-file", cfg.Database.Password)
}

func TestVaultSecretSource_Errors(t *testing.T) {
	srv := fakeVault(t)
	defer srv.Close()
	ctx := context.Background()

	src, err := NewVaultSecretSource(testConfig(srv.URL).Vault, logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = src.Get(ctx, "gridrisk/database", "port")
	assert.Error(t, err, "non-string fields are rejected")

	_, err = src.Get(ctx, "gridrisk/missing", "password")
	assert.Error(t, err)
}
