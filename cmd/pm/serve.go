package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/auth"
	"github.com/zulandar/processmap/internal/dashboard"
	"github.com/zulandar/processmap/internal/db"
	"github.com/zulandar/processmap/internal/logger"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long:  "Serves the process map API, the activity stream and Prometheus metrics. Tables are migrated on startup.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
	}()

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:          gormDB,
		Port:        port,
		Out:         cmd.OutOrStdout(),
		Log:         log,
		Issuer:      issuer,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
}
