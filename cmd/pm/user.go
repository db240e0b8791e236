package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/config"
	"github.com/zulandar/processmap/internal/db"
	"github.com/zulandar/processmap/internal/models"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage team members",
	}

	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserListCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		configPath string
		email      string
		name       string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a user",
		Long:  "Creates a user, or updates the name and role of an existing user with the same email.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(cmd, configPath, email, name, role)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().StringVar(&email, "email", "", "user email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "VIEWER", "role: ADMIN, MANAGER or VIEWER")
	cmd.MarkFlagRequired("email")
	return cmd
}

func runUserAdd(cmd *cobra.Command, configPath, email, name, role string) error {
	role = strings.ToUpper(role)
	if !models.Role(role).Valid() {
		return fmt.Errorf("role %q is not one of ADMIN, MANAGER, VIEWER", role)
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.SeedUsers(gormDB, []config.UserConfig{{Email: email, Name: name, Role: role}}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "User %s saved with role %s\n", strings.ToLower(email), role)
	return nil
}

func newUserListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	return cmd
}

func runUserList(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	var users []models.User
	if err := gormDB.Order("email ASC").Find(&users).Error; err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(users) == 0 {
		fmt.Fprintln(out, "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tID")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Email, u.Name, u.Role, u.ID)
	}
	return w.Flush()
}
