package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tutunian/cryptomator/internal/build"
	"github.com/tutunian/cryptomator/internal/config"
	"github.com/tutunian/cryptomator/internal/env"
	"github.com/tutunian/cryptomator/internal/launcher"
	"github.com/tutunian/cryptomator/internal/lifecycle"
	"github.com/tutunian/cryptomator/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var debugFlag bool

	cmd := &cobra.Command{
		Use:   "cryptomator [file...]",
		Short: "Cryptomator desktop launcher",
		Long: "Launches Cryptomator, or hands this invocation's arguments to an\n" +
			"already running instance and asks it to come to the foreground.",
		Args:          cobra.ArbitraryArgs,
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if debugFlag {
				cfg.Logging.Level = "debug"
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			shutdown := lifecycle.NewRegistry(logger)
			defer shutdown.Run()

			return launcher.Run(ctx, args, launcher.Options{
				SocketPaths: env.SocketPaths(cfg),
				Workload:    newAppWorkload(logger),
				Shutdown:    shutdown,
				Logger:      logger,
			})
		},
	}

	// Keep the exact version line parseable: no cobra decoration around it.
	cmd.SetVersionTemplate(fmt.Sprintf("%s version %s (build %s)\n",
		build.AppName, build.Version, build.BuildNumber))

	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	return cmd
}
