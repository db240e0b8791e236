package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/auth"
	"github.com/zulandar/processmap/internal/models"
	"gorm.io/gorm"
)

func newTokenCmd() *cobra.Command {
	var (
		configPath string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user",
		Long:  "Prints a signed bearer token for the given user. The role is looked up on every request, so changing a user's role takes effect without re-issuing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, configPath, email)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().StringVar(&email, "email", "", "user email (required)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func runToken(cmd *cobra.Command, configPath, email string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	var user models.User
	err = gormDB.Where("email = ?", strings.ToLower(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %q not found", email)
	}
	if err != nil {
		return fmt.Errorf("look up user %q: %w", email, err)
	}

	token, err := issuer.Issue(user)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
