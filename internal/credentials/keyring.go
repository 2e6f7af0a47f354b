package credentials

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for all taskbridge keyring entries
	KeyringService = "taskbridge"
)

// Set stores a provider API token in the OS keyring
func Set(providerName, token string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := keyring.Set(KeyringService, providerName, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Get retrieves a provider API token from the OS keyring. Returns an empty
// string without error when no entry exists.
func Get(providerName string) (string, error) {
	if providerName == "" {
		return "", fmt.Errorf("provider name cannot be empty")
	}

	token, err := keyring.Get(KeyringService, providerName)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes a provider's token from the OS keyring
func Delete(providerName string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	err := keyring.Delete(KeyringService, providerName)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks whether an OS keyring backend is usable
func IsAvailable() bool {
	const probe = "taskbridge-keyring-probe"
	if err := keyring.Set(KeyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, probe)
	return true
}
