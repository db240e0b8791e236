package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/config"
	"github.com/zulandar/processmap/internal/digest"
	"github.com/zulandar/processmap/internal/digest/discord"
	"github.com/zulandar/processmap/internal/digest/slack"
	"github.com/zulandar/processmap/internal/logger"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		schedule   bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the process health digest",
		Long: `Builds a summary of process health, open work and recent activity and posts
it to the Slack and Discord webhooks in the config. With --schedule, keeps
running and sends on digest.schedule (5-field cron).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, schedule, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "run continuously on digest.schedule")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the digest instead of sending it")
	return cmd
}

// digestSenders builds a sender per configured webhook.
func digestSenders(cfg config.DigestConfig) ([]digest.Sender, error) {
	var senders []digest.Sender
	if cfg.SlackWebhookURL != "" {
		s, err := slack.New(cfg.SlackWebhookURL)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	if cfg.DiscordWebhookURL != "" {
		s, err := discord.New(cfg.DiscordWebhookURL)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	return senders, nil
}

func runDigest(cmd *cobra.Command, configPath string, schedule, dryRun bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var senders []digest.Sender
	if !dryRun {
		senders, err = digestSenders(cfg.Digest)
		if err != nil {
			return err
		}
		if len(senders) == 0 {
			return fmt.Errorf("no digest webhooks configured, set digest.slack_webhook_url or digest.discord_webhook_url")
		}
	}

	send := func(ctx context.Context) error {
		report, err := digest.Build(ctx, gormDB, time.Now())
		if err != nil {
			return err
		}
		msg := digest.Format(report)
		if dryRun {
			fmt.Fprintf(out, "%s\n\n%s\n", msg.Title, msg.Body)
			return nil
		}
		if err := digest.Deliver(ctx, senders, msg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Digest sent to %d destination(s)\n", len(senders))
		return nil
	}

	if !schedule {
		return send(contextOf(cmd))
	}
	return runDigestSchedule(cmd, cfg, send)
}

func runDigestSchedule(cmd *cobra.Command, cfg *config.Config, send func(context.Context) error) error {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Sending digest on %q. Press Ctrl-C to stop.\n", cfg.Digest.Schedule)
	return digest.RunSchedule(ctx, cfg.Digest.Schedule, log, send)
}
