// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/drpg-sync/internal/client"
	"github.com/MKhiriev/drpg-sync/internal/config"
	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/internal/service"
	"github.com/MKhiriev/drpg-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := service.ExitSuccess
	root := newRootCommand(&code)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "drpg:", err)
		if code == service.ExitSuccess {
			code = service.ExitFailure
		}
	}

	stop()
	os.Exit(code)
}

func newRootCommand(code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "drpg",
		Short:         "Download and keep your DriveThruRPG library up to date",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := runSync(cmd)
			*code = c
			return err
		},
	}
	config.RegisterFlags(cmd.Flags())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), models.NewAppBuildInfo(buildVersion, buildDate, buildCommit).String())
		},
	})

	return cmd
}

func runSync(cmd *cobra.Command) (int, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return service.ExitFailure, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewClientLogger("drpg", logger.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return service.ExitFailure, err
	}

	app, err := client.NewApp(cmd.Context(), cfg, log, cmd.OutOrStdout())
	if err != nil {
		log.Error().Err(err).Msg("init sync app")
		return service.ExitFailure, err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("close state store")
		}
	}()

	return app.Run(cmd.Context())
}
