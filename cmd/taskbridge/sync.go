package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskbridge/backend"
	"taskbridge/backend/sync"
	"taskbridge/connectors"
	"taskbridge/internal/cli"
	"taskbridge/internal/config"
	"taskbridge/internal/credentials"
	"taskbridge/internal/utils"
)

func newSyncCmd() *cobra.Command {
	var providerName string
	var background bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize tasks with remote providers",
		Long: `Synchronize the local task database with the configured remote
providers. Each provider runs one reconciliation pass:

- New local tasks are created remotely (or rescued onto a same-named
  remote task)
- Local deletions propagate to the remote
- Local changes push, merging when the remote changed too
- Remote state is applied locally, tags included

Examples:
  taskbridge sync                   # Sync all providers
  taskbridge sync -p worktasks      # Sync one provider
  taskbridge sync --background      # No progress UI, logger output only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}

			registryPath, err := cfg.RegistryPath()
			if err != nil {
				return err
			}
			registry, err := connectors.LoadRegistry(registryPath)
			if err != nil {
				return err
			}

			providers := registry.Providers
			if providerName != "" {
				entry := registry.Find(providerName)
				if entry == nil {
					return fmt.Errorf("provider %q not found in registry", providerName)
				}
				providers = []connectors.ProviderConfig{*entry}
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			prefs := cfg.Preferences
			if background {
				prefs.BackgroundMode = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var failed bool
			for _, entry := range providers {
				if err := runProvider(ctx, db, entry, prefs); err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					utils.GetLogger().Error("sync of %s failed: %v", entry.Name, err)
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("one or more providers failed to sync")
			}
			return nil
		},
	}

	syncCmd.Flags().StringVarP(&providerName, "provider", "p", "", "Sync a single provider by name")
	syncCmd.Flags().BoolVar(&background, "background", false, "Run without a progress surface")

	return syncCmd
}

// runProvider executes one sync run for one registry entry.
func runProvider(ctx context.Context, db *backend.Database, entry connectors.ProviderConfig, prefs sync.Preferences) error {
	if offline, reason := isProviderOffline(entry); offline {
		fmt.Printf("⚠ %s is unreachable: %s\n", entry.Name, reason)
		fmt.Println("Working with local data. Changes will be synced when online.")
		return nil
	}

	creds, err := credentials.NewResolver().Resolve(entry.Name)
	if err != nil {
		return err
	}
	if creds.Source == credentials.SourceNone {
		return fmt.Errorf("no API token for provider %q (try: taskbridge credentials set %s)", entry.Name, entry.Name)
	}

	adapter, err := entry.Adapter(creds.Token)
	if err != nil {
		return err
	}

	driver := sync.NewDriver(entry.Provider(), adapter,
		backend.NewTaskStore(db), backend.NewTagStore(db), backend.NewMappingStore(db))
	driver.Prefs = prefs

	if prefs.BackgroundMode {
		return runBackground(ctx, driver, entry.Name)
	}

	if cli.IsTerminal() {
		reporter := cli.NewProgressReporter()
		driver.Reporter = reporter
		defer reporter.Close()
	} else {
		driver.Reporter = cli.PlainReporter{}
	}

	result, err := driver.Run(ctx)
	if err != nil {
		return err
	}
	if !result.Stats.HasChanges() {
		fmt.Printf("%s: already in sync (%.1fs)\n", entry.Name, result.Duration.Seconds())
	}
	return nil
}

// runBackground runs without a progress surface. Change-log lines and the
// summary go through the process logger; the start and finish of the run are
// written to the per-process background log file.
func runBackground(ctx context.Context, driver *sync.Driver, providerName string) error {
	bl, err := utils.NewBackgroundLogger()
	if err != nil {
		utils.GetLogger().Warn("%v", err)
	}
	defer bl.Close()

	driver.Reporter = &sync.LogReporter{Logger: utils.GetLogger()}

	bl.Printf("starting sync of %s", providerName)
	result, err := driver.Run(ctx)
	if err != nil {
		bl.Printf("sync of %s failed: %v", providerName, err)
		return err
	}
	bl.Printf("sync of %s finished in %.1fs: %+v", providerName, result.Duration.Seconds(), result.Stats)
	return nil
}

// isProviderOffline probes the provider endpoint with a short TCP dial.
func isProviderOffline(entry connectors.ProviderConfig) (bool, string) {
	u, err := url.Parse(entry.URL)
	if err != nil {
		return true, fmt.Sprintf("invalid URL: %v", err)
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	conn, err := net.DialTimeout("tcp", host, 3*time.Second)
	if err != nil {
		return true, err.Error()
	}
	_ = conn.Close()
	return false, ""
}
