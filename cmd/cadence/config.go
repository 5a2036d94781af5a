package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flemzord/cadence/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			fmt.Printf("Configuration OK (%d jobs)\n", len(cfg.Jobs))
			for name := range cfg.Jobs {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a starter configuration interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "cadence.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}

			answers := initAnswers{
				Timezone: "America/New_York",
				LogLevel: "info",
				Bind:     "127.0.0.1:8484",
			}
			if err := initForm(&answers).Run(); err != nil {
				return err
			}

			body := renderConfig(answers)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", path)
			fmt.Println("Edit the jobs section, then run: cadence start --config", path)
			return nil
		},
	}
	return cmd
}

type initAnswers struct {
	Timezone    string
	LogLevel    string
	EnableAdmin bool
	Bind        string
	BearerToken string
	History     bool
}

func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Civil timezone").
				Description("Business hours and cron expressions are evaluated here").
				Value(&a.Timezone),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.LogLevel),
			huh.NewConfirm().
				Title("Enable the admin HTTP server?").
				Value(&a.EnableAdmin),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Admin bind address").
				Value(&a.Bind),
			huh.NewInput().
				Title("Admin bearer token").
				Description("Leave empty to serve only /health and /metrics").
				EchoMode(huh.EchoModePassword).
				Value(&a.BearerToken),
		).WithHideFunc(func() bool { return !a.EnableAdmin }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Record run history in SQLite?").
				Value(&a.History),
		),
	)
}

func renderConfig(a initAnswers) string {
	var b strings.Builder
	b.WriteString("version: \"1\"\n")
	fmt.Fprintf(&b, "timezone: %s\n", a.Timezone)
	fmt.Fprintf(&b, "log_level: %s\n", a.LogLevel)

	if a.EnableAdmin {
		b.WriteString("\nadmin:\n")
		fmt.Fprintf(&b, "  bind: %s\n", a.Bind)
		if a.BearerToken != "" {
			b.WriteString("  auth:\n")
			fmt.Fprintf(&b, "    bearer_token: %s\n", a.BearerToken)
		}
	}
	if a.History {
		b.WriteString("\nhistory:\n")
		b.WriteString("  retention_days: 30\n")
	}

	b.WriteString(`
jobs:
  indexing:
    description: Sweep pending documents into the index
    interval:
      value: 60
      unit: seconds
    initial_delay:
      value: 15
      unit: seconds
    options:
      source: drive
  outreach:
    description: Send due follow-up messages
    interval:
      value: 15
      unit: minutes
    business_hours:
      start_hour: 9
      end_hour: 17
    options:
      batch_size: 10
`)
	return b.String()
}
