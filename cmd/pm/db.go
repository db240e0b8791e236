package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/apperr"
	"github.com/zulandar/processmap/internal/config"
	"github.com/zulandar/processmap/internal/db"
	"github.com/zulandar/processmap/internal/process"
	"golang.org/x/term"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Process Map database",
		Long:  "Migrates all tables, then seeds users and sections from the config file. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s database\n", cfg.Database.Driver)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	return seed(contextOf(cmd), out, gormDB, cfg)
}

// seed writes configured users and any sections not yet present.
func seed(ctx context.Context, out io.Writer, gormDB *gorm.DB, cfg *config.Config) error {
	if err := db.SeedUsers(gormDB, cfg.Users); err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d users\n", len(cfg.Users))

	if len(cfg.Sections) == 0 {
		fmt.Fprintln(out, "\nProcess Map database initialized successfully.")
		return nil
	}

	actor, err := actorFor(ctx, gormDB, cfg, "")
	if err != nil {
		return fmt.Errorf("seed sections: %w", err)
	}
	created := 0
	for _, s := range cfg.Sections {
		order := s.Order
		opts := process.CreateSectionOpts{Name: s.Name, Order: &order}
		if s.Color != "" {
			opts.Color = &s.Color
		}
		if s.Description != "" {
			opts.Description = &s.Description
		}
		_, err := process.CreateSection(ctx, gormDB, actor, opts)
		if apperr.Is(err, apperr.Validation) {
			fmt.Fprintf(out, "  skipped section %q: %v\n", s.Name, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed section %q: %w", s.Name, err)
		}
		created++
	}
	fmt.Fprintf(out, "Seeded %d sections\n", created)

	fmt.Fprintln(out, "\nProcess Map database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the Process Map database",
		Long: `Drops every Process Map table, including the activity log, then migrates
and seeds again from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if !skipConfirm {
		ok, err := confirmReset(cmd, cfg.Database)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := db.Reset(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped and re-created %d tables\n", len(db.AllModels()))

	return seed(contextOf(cmd), out, gormDB, cfg)
}

func confirmReset(cmd *cobra.Command, dbCfg config.DatabaseConfig) (bool, error) {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal, pass --yes to reset without a prompt")
	}

	target := dbCfg.Name
	if dbCfg.Driver == "sqlite" {
		target = dbCfg.Path
	}
	fmt.Fprintf(out, "WARNING: This will permanently delete all data in %s database %q.\n", dbCfg.Driver, target)
	fmt.Fprintln(out, "This includes the activity log and cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes", nil
	}
	return false, nil
}
