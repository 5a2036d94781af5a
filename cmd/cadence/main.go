// Package main is the entry point for the cadence CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/cadence/internal/app"
	"github.com/flemzord/cadence/internal/mcpserver"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cadence",
		Short:         "A recurring background-job scheduler with business-hours awareness",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), jobsCmd(), serviceCmd(), mcpCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("cadence %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler with all configured jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := configPathFlag(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(app.Params{
				ConfigPath: cfgPath,
				Version:    version,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the scheduler and expose job control over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := configPathFlag(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(app.Params{
				ConfigPath: cfgPath,
				Version:    version,
			})
			if err != nil {
				return err
			}

			a.Scheduler().StartAll()

			var runs mcpserver.RunSource
			if store := a.History(); store != nil {
				runs = store
			}
			serveErr := mcpserver.New(a.Scheduler(), runs, version).Serve()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return errors.Join(serveErr, a.Shutdown(shutdownCtx))
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configPathFlag(cmd *cobra.Command) (string, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath != "" {
		return cfgPath, nil
	}
	return resolveConfigPath()
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/cadence/cadence.yaml → ~/.config/cadence/cadence.yaml → ./cadence.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "cadence", "cadence.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "cadence", "cadence.yaml"))
	}

	candidates = append(candidates, "cadence.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
