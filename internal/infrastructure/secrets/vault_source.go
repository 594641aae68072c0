// Package secrets resolves credentials from HashiCorp Vault so they need not
// live in config files or the environment.
package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// VaultSecretSource reads key/value secrets from a KV v2 mount.
type VaultSecretSource struct {
	client *vault.Client
	cfg    config.VaultConfig
	logger logger.Logger
}

// NewVaultSecretSource creates and configures a new Vault client.
func NewVaultSecretSource(cfg config.VaultConfig, log logger.Logger) (*VaultSecretSource, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, errors.ErrInvalidConfiguration("failed to create vault client").WithCause(err)
	}
	client.SetToken(cfg.Token)

	return &VaultSecretSource{
		client: client,
		cfg:    cfg,
		logger: log.WithComponent("VaultSecretSource"),
	}, nil
}

// Get returns one string value of the secret at path.
func (s *VaultSecretSource) Get(ctx context.Context, path, key string) (string, error) {
	secret, err := s.client.KVv2(s.cfg.MountPath).Get(ctx, path)
	if err != nil {
		s.logger.Error(ctx, "failed to read secret from Vault", err, logger.Fields{"path": path})
		return "", errors.ErrTemporarilyUnavailable("could not read secret from vault").WithCause(err)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.ErrInvalidConfiguration(fmt.Sprintf("secret %s not found in vault", path))
	}
	value, ok := secret.Data[key].(string)
	if !ok || value == "" {
		return "", errors.ErrInvalidConfiguration(fmt.Sprintf("secret %s has no string field %q", path, key))
	}
	return value, nil
}

// ApplyDatabasePassword overwrites cfg.Database.Password with the Vault value
// when Vault is enabled. It is a no-op otherwise.
func ApplyDatabasePassword(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if !cfg.Vault.Enabled {
		return nil
	}
	src, err := NewVaultSecretSource(cfg.Vault, log)
	if err != nil {
		return err
	}
	password, err := src.Get(ctx, cfg.Vault.SecretPath, cfg.Vault.PasswordKey)
	if err != nil {
		return err
	}
	cfg.Database.Password = password
	log.Info(ctx, "Database password resolved from Vault", logger.Fields{"path": cfg.Vault.SecretPath})
	return nil
}
