package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/process"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture and list process map snapshots",
	}

	cmd.AddCommand(newSnapshotCreateCmd())
	cmd.AddCommand(newSnapshotListCmd())
	return cmd
}

func newSnapshotCreateCmd() *cobra.Command {
	var (
		configPath string
		as         string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Capture the current process map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotCreate(cmd, configPath, as, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().StringVar(&as, "as", "", "email of the acting user (default: first configured admin)")
	return cmd
}

func runSnapshotCreate(cmd *cobra.Command, configPath, as, name string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	actor, err := actorFor(contextOf(cmd), gormDB, cfg, as)
	if err != nil {
		return err
	}

	snap, err := process.CreateSnapshot(contextOf(cmd), gormDB, actor, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %q created (%s)\n", snap.Name, snap.ID)
	return nil
}

func newSnapshotListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	return cmd
}

func runSnapshotList(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	snaps, err := process.ListSnapshots(contextOf(cmd), gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No snapshots found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED\tBY\tID")
	for _, s := range snaps {
		by := s.CreatedByID
		if s.CreatedBy != nil {
			by = s.CreatedBy.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.CreatedAt.Local().Format("2006-01-02 15:04"), by, s.ID)
	}
	return w.Flush()
}
