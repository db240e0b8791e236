package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "pm dev") {
		t.Errorf("expected output to contain 'pm dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "pm 1.0.0") {
		t.Errorf("expected output to contain 'pm 1.0.0', got: %s", out)
	}
	if !strings.Contains(out, "built: 2026-01-01") {
		t.Errorf("expected output to contain 'built: 2026-01-01', got: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Process Map") {
		t.Errorf("expected help output to contain 'Process Map', got: %s", out)
	}
	for _, sub := range []string{"serve", "db", "user", "token", "health", "activity", "snapshot", "digest"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help output to list %q subcommand", sub)
		}
	}
}

func TestExecuteSuccess(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{})
	if code := execute(cmd); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestExecuteError(t *testing.T) {
	cmd := &cobra.Command{
		Use:           "failing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("intentional error")
		},
	}
	if code := execute(cmd); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestCommands_MissingConfig(t *testing.T) {
	for _, args := range [][]string{
		{"serve"},
		{"db", "init"},
		{"db", "reset", "--yes"},
		{"user", "list"},
		{"token", "--email", "a@example.com"},
		{"health"},
		{"activity"},
		{"snapshot", "list"},
		{"digest", "--dry-run"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			cmd := newRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append(args, "--config", "/nonexistent/processmap.yaml"))

			err := cmd.Execute()
			if err == nil {
				t.Fatal("expected error for missing config file")
			}
			if !strings.Contains(err.Error(), "load config") {
				t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
			}
		})
	}
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()
	if f := cmd.Flags().Lookup("port"); f == nil || f.DefValue != "0" {
		t.Errorf("--port flag = %+v, want default 0", f)
	}
	if f := cmd.Flags().Lookup("config"); f == nil || f.DefValue != "processmap.yaml" || f.Shorthand != "c" {
		t.Errorf("--config flag = %+v", f)
	}
}

func TestActivityCmd_DefaultLimit(t *testing.T) {
	cmd := newActivityCmd()
	if f := cmd.Flags().Lookup("limit"); f == nil || f.DefValue != "50" {
		t.Errorf("--limit flag = %+v, want default 50", f)
	}
}
