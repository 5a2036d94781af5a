package main

import (
	"context"
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/cadence/internal/app"
)

// program adapts the app lifecycle to the service manager's Start/Stop
// callbacks. Start must not block, so Run happens in its own goroutine.
type program struct {
	configPath string
	cancel     context.CancelFunc
	done       chan error
}

func (p *program) Start(service.Service) error {
	a, err := app.New(app.Params{ConfigPath: p.configPath, Version: version})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() { p.done <- a.Run(ctx) }()
	return nil
}

func (p *program) Stop(service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service <install|uninstall|start|stop|restart|run>",
		Short: "Manage cadence as a system service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configPathFlag(cmd)
			if err != nil {
				return err
			}

			svc, err := newService(cfgPath)
			if err != nil {
				return err
			}

			action := args[0]
			if action == "run" {
				// Invoked by the service manager itself.
				return svc.Run()
			}

			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("Service %s: done\n", action)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func newService(configPath string) (service.Service, error) {
	return service.New(&program{configPath: configPath}, &service.Config{
		Name:        "cadence",
		DisplayName: "cadence scheduler",
		Description: "Recurring background-job scheduler with business-hours awareness",
		Arguments:   []string{"service", "run", "--config", configPath},
	})
}
