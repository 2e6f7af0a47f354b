package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskbridge/connectors"
	"taskbridge/internal/config"
	"taskbridge/internal/credentials"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage provider API tokens",
		Long: `Securely manage provider API tokens using the system keyring.

Tokens can come from two places (in priority order):
  1. System keyring (most secure) - recommended
  2. Environment variables, .env included (good for CI/CD)

Examples:
  # Store a token in the keyring (interactive prompt)
  taskbridge credentials set worktasks

  # Non-interactive
  taskbridge credentials set worktasks <token>

  # Check where a token would come from
  taskbridge credentials status worktasks

  # Remove a token from the keyring
  taskbridge credentials delete worktasks`,
	}

	cmd.AddCommand(newCredentialsSetCmd())
	cmd.AddCommand(newCredentialsStatusCmd())
	cmd.AddCommand(newCredentialsDeleteCmd())

	return cmd
}

// registryEntry validates that the provider exists in the registry.
func registryEntry(providerName string) (*connectors.ProviderConfig, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	registryPath, err := cfg.RegistryPath()
	if err != nil {
		return nil, err
	}
	registry, err := connectors.LoadRegistry(registryPath)
	if err != nil {
		return nil, err
	}
	entry := registry.Find(providerName)
	if entry == nil {
		return nil, fmt.Errorf("provider %q not found in registry", providerName)
	}
	return entry, nil
}

func newCredentialsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider> [token]",
		Short: "Store a provider token in the system keyring",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := registryEntry(args[0])
			if err != nil {
				return err
			}

			var token string
			if len(args) == 2 {
				token = args[1]
			} else {
				fmt.Printf("Enter API token for %s: ", entry.Name)
				tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Println() // New line after hidden input
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(string(tokenBytes))
			}
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			if err := credentials.Set(entry.Name, token); err != nil {
				return err
			}
			fmt.Printf("Token for %s stored in keyring\n", entry.Name)
			return nil
		},
	}
}

func newCredentialsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <provider>",
		Short: "Show where a provider's token comes from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := registryEntry(args[0])
			if err != nil {
				return err
			}

			creds, err := credentials.NewResolver().Resolve(entry.Name)
			if err != nil {
				return err
			}
			switch creds.Source {
			case credentials.SourceNone:
				fmt.Printf("No token found for %s\n", entry.Name)
			default:
				fmt.Printf("Token for %s found in %s\n", entry.Name, creds.Source)
			}
			return nil
		},
	}
}

func newCredentialsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove a provider token from the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credentials.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Token for %s removed from keyring\n", args[0])
			return nil
		},
	}
}
