package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flemzord/cadence/internal/config"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List the jobs declared in the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := configPathFlag(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			names := make([]string, 0, len(cfg.Jobs))
			for name := range cfg.Jobs {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENABLED\tSCHEDULE\tBUSINESS HOURS")
			for _, name := range names {
				e := cfg.Jobs[name]
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", name, e.IsEnabled(), describeSchedule(e), describeHours(e))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func describeSchedule(e config.JobEntry) string {
	if e.Cron != "" {
		return "cron " + e.Cron
	}
	if e.Interval == nil {
		return "-"
	}
	return fmt.Sprintf("every %d %s", e.Interval.Value, e.Interval.Unit)
}

func describeHours(e config.JobEntry) string {
	if e.BusinessHours == nil {
		return "-"
	}
	days := "weekdays"
	if e.BusinessHours.IncludeWeekends {
		days = "every day"
	}
	return fmt.Sprintf("%02d:00-%02d:00 %s", e.BusinessHours.StartHour, e.BusinessHours.EndHour, days)
}
