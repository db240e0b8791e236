package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/processmap/internal/activity"
)

func newActivityCmd() *cobra.Command {
	var (
		configPath string
		q          activity.Query
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity log",
		Long:  "Prints the audit trail of changes, newest first. At most 100 rows are returned per page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivity(cmd, configPath, q)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Process Map config file")
	cmd.Flags().StringVar(&q.UserID, "user", "", "filter by acting user ID")
	cmd.Flags().StringVar(&q.EntityType, "entity-type", "", "filter by entity type (component, todo, issue, ...)")
	cmd.Flags().StringVar(&q.EntityID, "entity-id", "", "filter by entity ID")
	cmd.Flags().StringVar(&q.Action, "action", "", "filter by action (created, updated, ...)")
	cmd.Flags().IntVar(&q.Limit, "limit", activity.DefaultLimit, "rows per page, max 100")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&q.Enrich, "enrich", false, "look up a display name for each entity")
	return cmd
}

func runActivity(cmd *cobra.Command, configPath string, q activity.Query) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	page, err := activity.NewReader(gormDB, nil).List(contextOf(cmd), q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(page.Activities) == 0 {
		fmt.Fprintln(out, "No activity found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tUSER\tACTION\tENTITY\tID\tDETAIL")
	for _, row := range page.Activities {
		who := row.UserID
		if row.User != nil {
			who = row.User.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.CreatedAt.Local().Format("2006-01-02 15:04"), who, row.Action, row.EntityType, row.EntityID, detail(row))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	p := page.Pagination
	fmt.Fprintf(out, "\nShowing %d-%d of %d", p.Offset+1, p.Offset+len(page.Activities), p.Total)
	if p.HasMore {
		fmt.Fprintf(out, " (next: --offset %d)", p.Offset+p.Limit)
	}
	fmt.Fprintln(out)
	return nil
}

// detail picks the most readable field of an enriched row.
func detail(row activity.Row) string {
	for _, key := range []string{"title", "name"} {
		if v, ok := row.EntityDetails[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}
